package nanolog

import "sync/atomic"

// StagingBuffer is a single-producer/single-consumer circular byte queue
// between one user thread (the producer) and the logger's background
// worker (the consumer). It implements the reserve/commit/peek/consume
// protocol of spec.md §4.B.
//
// Field layout mirrors the cache-line isolation the teacher's RingBuffer
// (ringbuffer.go) and other_examples/drgolem-go-portaudio__spsc.go both
// use: producer-owned fields, a padding gap, then consumer-owned fields,
// so the two sides never bounce the same cache line between cores. The
// position counters and wrapPending are the only fields either side
// reads across goroutines; they use the atomic package in place of the
// hand-written sfence/lfence barriers (see fence.go).
type StagingBuffer struct {
	// --- producer-owned (written only by the owning user thread) ---
	producerPos           uint64
	endOfRecordedSpace    uint64
	minFreeSpace          uint64
	cyclesProducerBlocked atomic.Uint64

	_ [64 - 4*8]byte // pad producer fields off the consumer's cache line

	// --- consumer-owned (written only by the worker) ---
	consumerPos uint64

	_ [64 - 8]byte

	// --- shared, single-writer-each fields ---
	shouldDeallocate atomic.Bool // written once by the thread-local destructor, read by the worker
	// wrapPending is true from the moment the producer wraps producerPos
	// to 0 until the consumer has drained every byte up to
	// endOfRecordedSpace and wrapped consumerPos to 0 itself. It exists
	// because a physical position of 0 is otherwise ambiguous: it means
	// either "nothing has been produced into this lap yet" or "nothing
	// has been consumed from the previous lap yet", and those two states
	// require opposite answers to "is the buffer full or empty".
	wrapPending atomic.Bool
	id          uint32 // assigned once at registration, thereafter read-only

	storage        []byte
	releaseStorage func()

	lastReservation uint64 // size of the outstanding reserve(); 0 means none is open
}

// newStagingBuffer allocates a StagingBuffer with the given ring
// capacity. Capacity need not be a power of two: reserve/commit addresses
// are plain byte offsets, not slot indices, so no masking is required
// (unlike the fixed-size-slot rings in ring24/ring.go or
// other_examples/drgolem-go-portaudio__spsc.go — NanoLog records are
// variable length).
func newStagingBuffer(id uint32, capacity int) (*StagingBuffer, error) {
	storage, release, err := allocBuffer(capacity)
	if err != nil {
		return nil, err
	}
	return &StagingBuffer{
		id:             id,
		storage:        storage,
		releaseStorage: release,
		minFreeSpace:   uint64(capacity),
	}, nil
}

func (b *StagingBuffer) capacity() uint64 { return uint64(len(b.storage)) }

// reserve returns a pointer (as a byte slice) to n contiguous writable
// bytes. The caller must follow with exactly one commit(n) before
// calling reserve again.
//
// Fast path: the strict "<" test against minFreeSpace is load-bearing
// per spec.md §9's Open Question — it must stay strict, not "<=", to
// match the boundary the generated encoders are built against.
func (b *StagingBuffer) reserve(n uint64) []byte {
	if b.lastReservation != 0 {
		violate("reserve called without an intervening commit")
	}
	if n >= b.capacity()/2 {
		violate("reserve request at or above half the staging buffer capacity")
	}

	b.lastReservation = n

	if n < b.minFreeSpace {
		return b.storage[b.producerPos : b.producerPos+n]
	}
	return b.reserveSpaceInternal(n)
}

// reserveSpaceInternal is the slow path: if the tail of storage can't fit
// n more bytes it wraps the ring (recording endOfRecordedSpace for the
// consumer), then busy-waits — accumulating cyclesProducerBlocked —
// recomputing free space from the consumer's position until enough of it
// opens up.
//
// Because reserve()'s precondition already rejects n >= capacity()/2, a
// single wrap always leaves enough contiguous room at the front of
// storage; the loop below only ever wraps once per call.
func (b *StagingBuffer) reserveSpaceInternal(n uint64) []byte {
	if b.producerPos+n > b.capacity() {
		// Publish endOfRecordedSpace before wrapPending: the consumer only
		// acts on the former once it observes the latter, so this order
		// guarantees it never reads a stale boundary.
		atomic.StoreUint64(&b.endOfRecordedSpace, b.producerPos)
		b.wrapPending.Store(true)
		atomic.StoreUint64(&b.producerPos, 0)
	}

	start := rdtsc()
	spins := 0
	for {
		var free uint64
		if b.wrapPending.Load() {
			consumer := atomic.LoadUint64(&b.consumerPos)
			if consumer > b.producerPos {
				// The producer wrapped but the consumer hasn't drained
				// past endOfRecordedSpace yet, so it is still ahead of the
				// producer in absolute terms. One byte of slack keeps
				// producerPos from ever being advanced to exactly equal
				// consumerPos, which peek/canDelete would otherwise read
				// as "empty" instead of "full".
				free = consumer - b.producerPos - 1
			} else {
				// The consumer hasn't yet made any progress into the
				// region the producer is about to reuse — including the
				// case where consumerPos also reads 0, which does NOT
				// mean the buffer is empty here. Nothing is free until
				// the consumer moves.
				free = 0
			}
		} else {
			// Steady state: the consumer trails the producer within the
			// same lap. The producer may use everything up to the end of
			// storage without risk of meeting the consumer.
			free = b.capacity() - b.producerPos
		}

		if free >= n {
			b.minFreeSpace = free
			break
		}

		now := rdtsc()
		b.cyclesProducerBlocked.Add(now - start)
		start = now
		spins++
		if spins&0xff == 0 {
			cpuRelax()
		}
	}

	return b.storage[b.producerPos : b.producerPos+n]
}

// CyclesBlocked returns the cumulative rdtsc cycles the producer has
// spent spinning in reserveSpaceInternal waiting for the consumer.
func (b *StagingBuffer) CyclesBlocked() uint64 {
	return b.cyclesProducerBlocked.Load()
}

// commit makes n bytes starting at the pointer returned by the most
// recent reserve visible to the worker. n may be less than the size
// originally reserved — callers that must reserve an upper bound before
// they know a variable-length record's true size (every CompressFn does,
// since reserve() must run before the record's payload exists) commit
// only the bytes they actually used. n greater than the outstanding
// reservation is a contract violation.
func (b *StagingBuffer) commit(n uint64) {
	if b.lastReservation == 0 {
		violate("commit called without a matching reserve")
	}
	if n > b.lastReservation {
		violate("commit size exceeds the outstanding reserve")
	}
	b.lastReservation = 0

	sfence() // producer's payload writes must land before producerPos advances
	b.minFreeSpace -= n
	atomic.StoreUint64(&b.producerPos, b.producerPos+n)
}

// peek returns the next unread contiguous span to the consumer. While a
// producer wrap is pending it drains up to endOfRecordedSpace first,
// only wrapping consumerPos to the start of storage (and reporting the
// span up to the current producerPos) once that lap is exhausted. An
// empty buffer reports a nil slice.
func (b *StagingBuffer) peek() []byte {
	if b.wrapPending.Load() {
		end := atomic.LoadUint64(&b.endOfRecordedSpace)
		if b.consumerPos < end {
			return b.storage[b.consumerPos:end]
		}
		// The old lap is fully drained. Cross into the lap the producer
		// already wrapped into before comparing positions below —
		// otherwise consumerPos == 0 == producerPos here would be
		// indistinguishable from "producer hasn't wrapped at all yet".
		atomic.StoreUint64(&b.consumerPos, 0)
		b.wrapPending.Store(false)
	}

	producer := atomic.LoadUint64(&b.producerPos)
	if b.consumerPos == producer {
		return nil
	}
	return b.storage[b.consumerPos:producer]
}

// consume returns n bytes — at most what the last peek reported — to the
// producer for reuse.
func (b *StagingBuffer) consume(n uint64) {
	lfence() // consumer's payload reads must finish before consumerPos advances
	newPos := b.consumerPos + n
	atomic.StoreUint64(&b.consumerPos, newPos)
}

// canDelete reports whether the owning thread has terminated and every
// byte it committed has been consumed, i.e. it is safe for the worker to
// unregister and release this buffer.
func (b *StagingBuffer) canDelete() bool {
	return b.shouldDeallocate.Load() && b.consumerPos == atomic.LoadUint64(&b.producerPos)
}

func (b *StagingBuffer) release() {
	if b.releaseStorage != nil {
		b.releaseStorage()
	}
}
