package nanolog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// sample_generated.go is a reference GeneratedCode implementation standing
// in for the real preprocessor output spec.md §6.4 describes. It exists so
// tests and examples in this repository have something to log through
// without a code-generation step; a production deployment replaces it with
// call-site-specific compress/decompress pairs the preprocessor emits.
//
// Every argument is tagged with its own type byte so one pair of
// Compress/Decompress functions can serve every call site, rather than one
// pair per id as the real preprocessor would generate — simpler, at the
// cost of the few bytes per argument the real system's type-erasure at
// compile time would have saved.
const (
	tagInt64 byte = iota
	tagFloat64
	tagString
)

// SampleGeneratedCode implements GeneratedCode over a fixed table of
// LogMetadata supplied at construction time, one entry per format id.
type SampleGeneratedCode struct {
	metadata []LogMetadata
}

// NewSampleGeneratedCode builds a GeneratedCode table from entries, indexed
// by position: entries[i] is format id i.
func NewSampleGeneratedCode(entries []LogMetadata) *SampleGeneratedCode {
	return &SampleGeneratedCode{metadata: entries}
}

// DefaultSampleGeneratedCode returns a demo GeneratedCode table large
// enough for tools like cmd/nanolog-decode to decode a file produced
// through this package's own Producer.Log path without a real
// preprocessor. Every entry carries an empty FmtString, so
// decompressArgs falls back to fmt.Fprint regardless of each call
// site's argument count or types.
func DefaultSampleGeneratedCode(numIds int) *SampleGeneratedCode {
	entries := make([]LogMetadata, numIds)
	for i := range entries {
		entries[i] = LogMetadata{FileName: "generated", LineNumber: i, Severity: SeverityInfo}
	}
	return NewSampleGeneratedCode(entries)
}

func (g *SampleGeneratedCode) NumLogIds() int { return len(g.metadata) }

func (g *SampleGeneratedCode) Metadata(id int) LogMetadata { return g.metadata[id] }

func (g *SampleGeneratedCode) Compress(id int) CompressFn { return compressArgs }

func (g *SampleGeneratedCode) Decompress(id int) DecompressFn {
	fmtString := g.metadata[id].FmtString
	return func(src []byte, w io.Writer) (int, error) {
		return decompressArgs(fmtString, src, w)
	}
}

func compressArgs(dst []byte, args ...any) int {
	offset := 0
	for _, a := range args {
		switch v := a.(type) {
		case string:
			dst[offset] = tagString
			offset++
			binary.LittleEndian.PutUint32(dst[offset:], uint32(len(v)))
			offset += 4
			copy(dst[offset:], v)
			offset += len(v)
		case int:
			offset += putInt64(dst[offset:], int64(v))
		case int64:
			offset += putInt64(dst[offset:], v)
		case float64:
			dst[offset] = tagFloat64
			offset++
			binary.LittleEndian.PutUint64(dst[offset:], math.Float64bits(v))
			offset += 8
		default:
			panic(fmt.Sprintf("nanolog: unsupported argument type %T", a))
		}
	}
	return offset
}

func putInt64(dst []byte, v int64) int {
	dst[0] = tagInt64
	binary.LittleEndian.PutUint64(dst[1:], uint64(v))
	return 9
}

func decompressArgs(fmtString string, src []byte, w io.Writer) (int, error) {
	offset := 0
	var rendered []any
	for offset < len(src) {
		switch src[offset] {
		case tagInt64:
			v := int64(binary.LittleEndian.Uint64(src[offset+1:]))
			offset += 9
			rendered = append(rendered, v)
		case tagFloat64:
			v := math.Float64frombits(binary.LittleEndian.Uint64(src[offset+1:]))
			offset += 9
			rendered = append(rendered, v)
		case tagString:
			n := int(binary.LittleEndian.Uint32(src[offset+1:]))
			offset += 5
			rendered = append(rendered, string(src[offset:offset+n]))
			offset += n
		default:
			return offset, fmt.Errorf("nanolog: unknown argument tag %d", src[offset])
		}
	}
	if fmtString != "" {
		fmt.Fprintf(w, fmtString, rendered...)
	} else {
		fmt.Fprint(w, rendered...)
	}
	return offset, nil
}
