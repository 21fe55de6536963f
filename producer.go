package nanolog

import "runtime"

// Producer is the Go-shaped stand-in for NanoLog's thread-local
// StagingBuffer pointer (spec.md §9, "Thread-local producer pointer vs
// heavy thread-local object"). Go goroutines have no OS-thread identity
// and no destructor hook that fires on goroutine exit, so there is no
// direct translation of "thread_local StagingBuffer* plus a thread_local
// destructor sentinel." Instead, each goroutine that wants to log obtains
// one Producer (cheap: it is just a pointer to a *StagingBuffer) and
// calls Close when it is done with it, mirroring the explicit-lifecycle
// idiom Go already uses for *os.File and *sql.Rows. A runtime.SetFinalizer
// is attached as the backstop the thread_local destructor would have
// been, in case a caller forgets — finalizers are the closest built-in
// analog to "run this when the owner goes away" Go offers.
type Producer struct {
	buf *StagingBuffer
	log *Logger
}

// ReserveAlloc is the producer half of spec.md §6.1's internal
// reserveAlloc(n)/finishAlloc(n) pair, invoked by generated call-site
// code (or, in this repository, by Producer.Log below).
func (p *Producer) ReserveAlloc(n uint64) []byte {
	return p.buf.reserve(n)
}

// FinishAlloc is the finishAlloc(n) half of the same pair.
func (p *Producer) FinishAlloc(n uint64) {
	p.buf.commit(n)
}

// Log encodes one call site's dynamic arguments through the Logger's
// GeneratedCode table and stages the self-describing record. It is the
// convenience path the tests use, with sample_generated.go's table, in
// place of a real preprocessor-rewritten call site.
func (p *Producer) Log(id int, args ...any) {
	compress := p.log.gc.Compress(id)

	space := p.ReserveAlloc(recordHeaderSize + maxRecordPayload)
	n := compress(space[recordHeaderSize:], args...)
	putRecordHeader(space, uint32(id), uint32(n))
	p.FinishAlloc(uint64(recordHeaderSize + n))
}

// CyclesBlocked returns the cumulative rdtsc cycles this producer has
// spent spinning in reserve() waiting for the worker to free up space.
func (p *Producer) CyclesBlocked() uint64 {
	return p.buf.CyclesBlocked()
}

// Close marks the underlying StagingBuffer for reclamation once the
// worker has drained it, the Go equivalent of the thread_local
// StagingBufferDestroyer firing on thread death. It is safe to call more
// than once.
func (p *Producer) Close() {
	p.buf.shouldDeallocate.Store(true)
	runtime.SetFinalizer(p, nil)
}

func finalizeProducer(p *Producer) {
	p.Close()
}
