//go:build windows

package nanolog

// allocBufferImpl falls back to an ordinary heap allocation on Windows.
// Anonymous memory mapping there requires CreateFileMapping against the
// page file via a dedicated handle dance (see the teacher's
// mmap_writer_windows.go for the file-backed equivalent); that complexity
// buys nothing for an anonymous, process-lifetime buffer, so a plain
// make() is used instead. The buffer is still never resized or copied
// after allocation, which is the property callers actually rely on.
func allocBufferImpl(n int) ([]byte, func(), error) {
	b := make([]byte, n)
	return b, func() {}, nil
}
