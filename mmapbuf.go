package nanolog

// allocBuffer returns a zero-filled byte slice of exactly n bytes meant
// to back a StagingBuffer or a compressing buffer for the life of the
// process. It never grows, shrinks, or gets copied by the garbage
// collector once allocated (see mmapbuf_unix.go), keeping the
// per-thread ring and the worker's double buffers out of GC scan
// pressure the way the original's fixed-address char storage[] member
// is never touched by a collector.
func allocBuffer(n int) ([]byte, func(), error) {
	return allocBufferImpl(n)
}
