package nanolog

import "testing"

func TestRecordHeaderRoundTrip(t *testing.T) {
	dst := make([]byte, recordHeaderSize+5)
	putRecordHeader(dst, 7, 5)

	id, payloadLen := readRecordHeader(dst)
	if id != 7 || payloadLen != 5 {
		t.Fatalf("readRecordHeader = (%d, %d), want (7, 5)", id, payloadLen)
	}

	total, ok := nextRecordLen(dst)
	if !ok || total != uint64(recordHeaderSize+5) {
		t.Fatalf("nextRecordLen = (%d, %v), want (%d, true)", total, ok, recordHeaderSize+5)
	}
}

func TestNextRecordLenIncomplete(t *testing.T) {
	dst := make([]byte, recordHeaderSize+5)
	putRecordHeader(dst, 1, 5)

	if _, ok := nextRecordLen(dst[:recordHeaderSize+2]); ok {
		t.Fatal("nextRecordLen should report incomplete when the payload is truncated")
	}
	if _, ok := nextRecordLen(dst[:3]); ok {
		t.Fatal("nextRecordLen should report incomplete when the header itself is truncated")
	}
}
