//go:build !windows

package nanolog

// defaultUseAIO is true on unix platforms, where aio_unix.go backs the
// async writer with real unix.Pwrite/unix.Fsync calls off the producer's
// hot path.
const defaultUseAIO = true
