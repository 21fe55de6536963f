// Package decoder implements the offline side of spec.md §4.F: reading
// back a log file the runtime produced and rendering it to human-readable
// text, the Go counterpart of original_source/runtime/LogDecompressor.cc
// and Log::Decoder.
package decoder

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/nanolog/nanolog"
)

// Decoder reads a single nanolog output file end to end. It must be
// constructed with the same GeneratedCode table the producing process
// used — exactly the constraint LogDecompressor.cc's header comment
// states ("this executable must be compiled with the same
// BufferStuffer.h as the LogCompressor that generated the file").
type Decoder struct {
	file *os.File
	gc   nanolog.GeneratedCode
}

// Open opens path for reading. It reports false (matching
// Log::Decoder::open's bool return) if the file cannot be opened, rather
// than returning an error, to mirror the original's "print and continue"
// caller pattern in LogDecompressor.cc's main().
func Open(path string, gc nanolog.GeneratedCode) (*Decoder, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	return &Decoder{file: f, gc: gc}, true
}

// Close releases the underlying file handle.
func (d *Decoder) Close() error {
	return d.file.Close()
}

// DecompressUnordered renders up to maxMessages records (all of them, if
// maxMessages <= 0) to w, scanning the file strictly in the order records
// were written — "unordered" here means only that it makes no attempt to
// interleave by timestamp across multiple producers, exactly as
// decompressUnordered does in the original. It returns the number of
// records rendered.
func (d *Decoder) DecompressUnordered(w io.Writer, maxMessages int) (int, error) {
	data, err := io.ReadAll(d.file)
	if err != nil {
		return 0, err
	}

	rendered := 0
	pos := 0
	for pos < len(data) {
		if maxMessages > 0 && rendered >= maxMessages {
			break
		}

		if data[pos] == nanolog.PadByte {
			pos++
			continue
		}

		id, payloadLen, ok := peekHeader(data[pos:])
		if !ok {
			break
		}
		total := 8 + int(payloadLen)

		if id >= uint32(d.gc.NumLogIds()) {
			// Not a header we recognize at this position — the decoder and
			// the producing process disagree about the GeneratedCode
			// table, which is a usage error, not a corrupt file.
			return rendered, fmt.Errorf("nanolog: format id %d out of range (decoder built against a different GeneratedCode table?)", id)
		}

		decompress := d.gc.Decompress(int(id))
		meta := d.gc.Metadata(int(id))

		var body bytes.Buffer
		consumed, err := decompress(data[pos+8:pos+total], &body)
		if err != nil {
			return rendered, err
		}
		if consumed != int(payloadLen) {
			return rendered, fmt.Errorf("nanolog: record at offset %d: decoder consumed %d of %d payload bytes", pos, consumed, payloadLen)
		}

		fmt.Fprintf(w, "%s:%d %s: %s\n", meta.FileName, meta.LineNumber, meta.Severity, body.String())

		pos += total
		rendered++
	}

	return rendered, nil
}

func peekHeader(buf []byte) (id uint32, payloadLen uint32, ok bool) {
	if len(buf) < 8 {
		return 0, 0, false
	}
	id = uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	payloadLen = uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24
	if len(buf) < 8+int(payloadLen) {
		return 0, 0, false
	}
	return id, payloadLen, true
}
