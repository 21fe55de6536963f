package nanolog

import "sync/atomic"

// fenceToken is touched by sfence/lfence purely to obtain a sequentially
// consistent atomic operation. Go's memory model gives every
// sync/atomic access acquire/release semantics on every port the
// toolchain supports, which is the "equivalent release/acquire ordering"
// spec.md §4.A asks for in place of hand-written SFENCE/LFENCE
// instructions.
var fenceToken atomic.Uint32

// sfence enforces store-before-store ordering: writes to a record's
// payload issued before sfence are guaranteed visible to any goroutine
// that later observes the producerPos store sfence precedes.
func sfence() {
	fenceToken.Add(1)
}

// lfence enforces load-before-load ordering: reads of a record's payload
// issued before lfence are guaranteed complete before the consumerPos
// store lfence precedes becomes visible to the producer.
func lfence() {
	fenceToken.Add(1)
}
