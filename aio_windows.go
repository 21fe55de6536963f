//go:build windows

package nanolog

import "os"

// pwriteFsync uses the standard library's positional WriteAt/Sync on
// Windows, where x/sys/unix's Pwrite/Fsync aren't available. defaultUseAIO
// is false on this platform (aio_default_windows.go), so syncWriter
// (aio.go) is the normal path; platformAsyncWriter below only runs if a
// caller explicitly sets Config.UseAIO.
func pwriteFsync(file *os.File, buf []byte, offset int64) error {
	for len(buf) > 0 {
		n, err := file.WriteAt(buf, offset)
		if err != nil {
			return err
		}
		buf = buf[n:]
		offset += int64(n)
	}
	return file.Sync()
}

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
