package nanolog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.StagingBufferSize = 16384
	cfg.OutputBufferSize = 16384
	cfg.PollIntervalBytes = 64
	cfg.PollIntervalNoWork = time.Millisecond
	cfg.UseAIO = false
	return cfg
}

func TestLoggerLogAndSync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nlog")

	gc := NewSampleGeneratedCode([]LogMetadata{
		{FileName: "test.go", LineNumber: 1, FmtString: "hello %s", Severity: SeverityInfo},
	})

	l, err := NewLogger(testConfig(), gc, path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	p := l.Preallocate()
	for i := 0; i < 50; i++ {
		p.Log(0, "world")
	}

	l.Sync()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected sync to have flushed at least one byte to disk")
	}

	p.Close()
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoggerProducerReclaimedAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nlog")

	gc := NewSampleGeneratedCode([]LogMetadata{
		{FileName: "test.go", LineNumber: 1, FmtString: "n=%d", Severity: SeverityDebug},
	})

	l, err := NewLogger(testConfig(), gc, path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	p := l.Preallocate()
	p.Log(0, int64(1))
	p.Close() // simulates the producing goroutine exiting

	// Give the worker a chance to drain and reclaim the buffer before the
	// logger is torn down.
	l.Sync()

	l.registryMu.Lock()
	n := len(l.registry)
	l.registryMu.Unlock()
	if n != 0 {
		t.Fatalf("registry still holds %d buffers after the producer closed and a sync completed", n)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoggerSetLogFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.nlog")
	second := filepath.Join(dir, "second.nlog")

	gc := NewSampleGeneratedCode([]LogMetadata{
		{FileName: "test.go", LineNumber: 1, FmtString: "x", Severity: SeverityInfo},
	})

	l, err := NewLogger(testConfig(), gc, first)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	p := l.Preallocate()
	p.Log(0)
	l.Sync()

	if err := l.SetLogFile(second); err != nil {
		t.Fatalf("SetLogFile: %v", err)
	}

	p.Log(0)
	l.Sync()

	if _, err := os.Stat(second); err != nil {
		t.Fatalf("stat second log file: %v", err)
	}

	p.Close()
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
