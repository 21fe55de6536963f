package nanolog

import "runtime"

// cpuRelax yields the producer's time slice while it is backed off inside
// reserveSpaceInternal. The teacher's retrieval pack includes a
// per-architecture PAUSE/YIELD instruction split
// (ring24/relax_amd64.go, ring24/relax_arm64.go) reached through cgo;
// this runtime avoids cgo entirely; runtime.Gosched gives the scheduler
// the same hint — let another goroutine (most importantly, the worker)
// run — without pulling in a C toolchain dependency for a spin hint.
func cpuRelax() {
	runtime.Gosched()
}
