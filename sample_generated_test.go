package nanolog

import (
	"bytes"
	"testing"
)

func TestCompressArgsDecompressArgsRoundTrip(t *testing.T) {
	dst := make([]byte, maxRecordPayload)
	n := compressArgs(dst, "widget", int64(42), 3.5)

	var out bytes.Buffer
	consumed, err := decompressArgs("%s count=%d ratio=%g", dst[:n], &out)
	if err != nil {
		t.Fatalf("decompressArgs: %v", err)
	}
	if consumed != n {
		t.Fatalf("consumed = %d, want %d", consumed, n)
	}

	want := "widget count=42 ratio=3.5"
	if out.String() != want {
		t.Fatalf("rendered = %q, want %q", out.String(), want)
	}
}

func TestSampleGeneratedCodeMetadata(t *testing.T) {
	gc := NewSampleGeneratedCode([]LogMetadata{
		{FileName: "main.go", LineNumber: 10, FmtString: "starting %s", Severity: SeverityInfo},
	})

	if gc.NumLogIds() != 1 {
		t.Fatalf("NumLogIds = %d, want 1", gc.NumLogIds())
	}
	meta := gc.Metadata(0)
	if meta.FileName != "main.go" || meta.LineNumber != 10 {
		t.Fatalf("Metadata(0) = %+v, unexpected", meta)
	}
}
