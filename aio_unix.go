//go:build !windows

package nanolog

import (
	"os"

	"golang.org/x/sys/unix"
)

// pwriteFsync writes buf to file at offset and fsyncs, using
// golang.org/x/sys/unix in place of the teacher's raw
// syscall.Syscall(SYS_MSYNC, ...) calls (mmap_unix.go) — the same
// dependency the teacher's go.mod declares, used here through its typed
// wrapper instead of bare syscall numbers.
func pwriteFsync(file *os.File, buf []byte, offset int64) error {
	for len(buf) > 0 {
		n, err := unix.Pwrite(int(file.Fd()), buf, offset)
		if err != nil {
			return err
		}
		buf = buf[n:]
		offset += int64(n)
	}
	return unix.Fsync(int(file.Fd()))
}

// platformAsyncWriter submits the write on a background goroutine so the
// worker loop can continue scanning staging buffers while the kernel
// does the I/O, and reports completion through a channel read by
// wait()/poll(). This is the "submit/poll/wait" shape spec.md §4.D asks
// for, built on the synchronous-fallback primitive it explicitly allows
// in place of real io_submit/io_uring bindings (see SPEC_FULL.md's Open
// Question Decisions).
type platformAsyncWriter struct {
	done chan error
}

func newPlatformAsyncWriter() asyncWriter {
	return &platformAsyncWriter{}
}

func (w *platformAsyncWriter) submit(file *os.File, buf []byte, offset int64) {
	done := make(chan error, 1)
	w.done = done
	go func() {
		done <- pwriteFsync(file, buf, offset)
	}()
}

func (w *platformAsyncWriter) poll() (bool, error) {
	if w.done == nil {
		return false, nil
	}
	select {
	case err := <-w.done:
		w.done = nil
		return false, err
	default:
		return true, nil
	}
}

func (w *platformAsyncWriter) wait() error {
	if w.done == nil {
		return nil
	}
	err := <-w.done
	w.done = nil
	return err
}
