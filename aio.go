package nanolog

import "os"

// asyncWriter is spec.md §4.D's abstract submit/poll/wait interface. At
// most one request is ever outstanding at a time — the worker loop in
// logger.go enforces that by always calling wait() before the next
// submit(). A portable implementation may fall back to synchronous
// write+fsync, which is exactly what both platform implementations below
// do: they run the write on a background goroutine so the worker's
// caller isn't blocked, matching the teacher's own
// "go w.syncRange(...)" pattern in mmap_writer_unix.go, without needing
// real kernel AIO (io_submit/IOCP) bindings.
type asyncWriter interface {
	// submit writes buf to file starting at offset. It must not be called
	// again until the previous submission's result has been observed via
	// wait() or poll().
	submit(file *os.File, buf []byte, offset int64)
	// poll reports the outstanding request's state without blocking.
	poll() (pending bool, err error)
	// wait blocks until the outstanding request completes and returns its
	// result exactly once.
	wait() error
}

// newAsyncWriter selects the platform backend. cfg.UseAIO toggles between
// the real (still-synchronous-underneath, per spec.md §4.D's allowance)
// backend and a same-goroutine synchronous writer for environments where
// even the background-goroutine indirection isn't wanted (e.g. tests that
// want deterministic, immediately-visible writes).
func newAsyncWriter(useAIO bool) asyncWriter {
	if !useAIO {
		return &syncWriter{}
	}
	return newPlatformAsyncWriter()
}

// syncWriter performs the write inline, on the calling (worker) goroutine.
// It still satisfies the interface's "at most one outstanding operation"
// contract trivially, since submit() never returns before the write is
// done.
type syncWriter struct {
	err error
}

func (w *syncWriter) submit(file *os.File, buf []byte, offset int64) {
	w.err = pwriteFsync(file, buf, offset)
}

func (w *syncWriter) poll() (bool, error) { return false, w.err }
func (w *syncWriter) wait() error         { return w.err }
