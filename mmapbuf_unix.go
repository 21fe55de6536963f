//go:build !windows

package nanolog

import "golang.org/x/sys/unix"

// allocBufferImpl backs a staging or compressing buffer with an
// anonymous, page-aligned mapping via golang.org/x/sys/unix, grounded on
// the teacher's NewMMapWriter (mmap_writer_unix.go) which maps a
// file-backed region for the same reason: a stable address the Go
// runtime's GC never scans or relocates. Here the mapping is anonymous
// (MAP_ANON) rather than file-backed, since this buffer is never itself
// the output file — it is the staging area the worker drains into the
// real output file via aio_unix.go.
func allocBufferImpl(n int) ([]byte, func(), error) {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, &ConfigError{Msg: "mmap staging buffer", Err: err}
	}
	release := func() {
		_ = unix.Munmap(b)
	}
	return b, release, nil
}
