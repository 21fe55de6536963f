package nanolog

import "encoding/binary"

// recordHeaderSize is the size of the generic envelope the runtime itself
// stamps on every record before handing the payload to a CompressFn.
// spec.md §3 describes the on-disk log as "an opaque, length-prefixed
// stream of compressed records": the format-id/length pair below is that
// length prefix. GeneratedCode owns everything after it — the runtime
// never interprets payload bytes, only the envelope around them, which
// is what keeps the worker loop in logger.go ignorant of per-record
// layout (spec.md §9, "generated-code coupling").
const recordHeaderSize = 8

// maxRecordPayload bounds a single record's encoded payload. It exists
// so producer-side callers can reserve an upper bound before a
// CompressFn has told them the record's true size (reserve() must run
// before the payload exists to write into).
const maxRecordPayload = 4096

// PadByte fills the alignment padding rotate() appends after the last
// real record in a submission (logger.go). A run of PadByte can never be
// mistaken for the start of a real record: it decodes as format id
// 0xFFFFFFFF, which no GeneratedCode table populated by this package can
// ever assign, so the decoder (decoder.Decoder) can skip it byte by byte
// while resynchronizing onto the next genuine record.
const PadByte = 0xFF

func putRecordHeader(dst []byte, id uint32, payloadLen uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], id)
	binary.LittleEndian.PutUint32(dst[4:8], payloadLen)
}

func readRecordHeader(src []byte) (id uint32, payloadLen uint32) {
	return binary.LittleEndian.Uint32(src[0:4]), binary.LittleEndian.Uint32(src[4:8])
}

// nextRecordLen reports the total on-wire size (header + payload) of the
// record starting at buf[0], and whether buf holds that many bytes yet.
// It is the generic scan the worker loop uses to find record boundaries
// without ever calling into GeneratedCode.
func nextRecordLen(buf []byte) (total uint64, ok bool) {
	if len(buf) < recordHeaderSize {
		return 0, false
	}
	_, payloadLen := readRecordHeader(buf)
	total = uint64(recordHeaderSize) + uint64(payloadLen)
	if uint64(len(buf)) < total {
		return 0, false
	}
	return total, true
}
