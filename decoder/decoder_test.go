package decoder

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nanolog/nanolog"
)

func TestDecompressUnordered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nlog")

	gc := nanolog.NewSampleGeneratedCode([]nanolog.LogMetadata{
		{FileName: "main.go", LineNumber: 12, FmtString: "hello", Severity: nanolog.SeverityInfo},
	})

	l, err := nanolog.NewLogger(testLoggerConfig(), gc, path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	p := l.Preallocate()
	for i := 0; i < 3; i++ {
		p.Log(0)
	}
	l.Sync()
	p.Close()
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d, ok := Open(path, gc)
	if !ok {
		t.Fatalf("Open(%q) failed", path)
	}
	defer d.Close()

	var out bytes.Buffer
	n, err := d.DecompressUnordered(&out, 0)
	if err != nil {
		t.Fatalf("DecompressUnordered: %v", err)
	}
	if n != 3 {
		t.Fatalf("decoded %d records, want 3", n)
	}
}

func TestDecompressUnorderedRespectsMaxMessages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nlog")

	gc := nanolog.NewSampleGeneratedCode([]nanolog.LogMetadata{
		{FileName: "main.go", LineNumber: 12, FmtString: "hello", Severity: nanolog.SeverityInfo},
	})

	l, err := nanolog.NewLogger(testLoggerConfig(), gc, path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	p := l.Preallocate()
	for i := 0; i < 5; i++ {
		p.Log(0)
	}
	l.Sync()
	p.Close()
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d, ok := Open(path, gc)
	if !ok {
		t.Fatalf("Open(%q) failed", path)
	}
	defer d.Close()

	var out bytes.Buffer
	n, err := d.DecompressUnordered(&out, 2)
	if err != nil {
		t.Fatalf("DecompressUnordered: %v", err)
	}
	if n != 2 {
		t.Fatalf("decoded %d records, want 2", n)
	}
}

func TestOpenMissingFile(t *testing.T) {
	gc := nanolog.NewSampleGeneratedCode(nil)
	if _, ok := Open(filepath.Join(t.TempDir(), "missing.nlog"), gc); ok {
		t.Fatal("Open should fail for a nonexistent file")
	}
}

func testLoggerConfig() nanolog.Config {
	cfg := nanolog.DefaultConfig()
	cfg.StagingBufferSize = 16384
	cfg.OutputBufferSize = 16384
	cfg.PollIntervalBytes = 64
	cfg.UseAIO = false
	return cfg
}
