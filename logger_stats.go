package nanolog

import (
	"fmt"
	"io"
)

// PrintConfig writes the active Config in the same key/value shape the
// teacher's terminal_writer.go favors for structured key=value output,
// matching spec.md §6.1's printConfig().
func (l *Logger) PrintConfig(w io.Writer) {
	fmt.Fprintf(w, "stagingBufferSize=%d outputBufferSize=%d pollIntervalNoWork=%s pollIntervalBytes=%d fileAlignmentBytes=%d useAIO=%t\n",
		l.cfg.StagingBufferSize, l.cfg.OutputBufferSize, l.cfg.PollIntervalNoWork,
		l.cfg.PollIntervalBytes, l.cfg.FileAlignmentBytes, l.cfg.UseAIO)
}

// PrintStats writes the background worker's running counters, matching
// spec.md §6.1's printStats(). Every counter is read through its atomic
// so a concurrent caller never observes a torn value.
func (l *Logger) PrintStats(w io.Writer) {
	l.registryMu.Lock()
	liveBuffers := len(l.registry)
	l.registryMu.Unlock()

	fmt.Fprintf(w, "liveStagingBuffers=%d eventsProcessed=%d totalBytesRead=%d totalBytesWritten=%d padBytesWritten=%d numAioWritesCompleted=%d cyclesAwake=%d cyclesScanningAndCompressing=%d cyclesAioAndFsync=%d\n",
		liveBuffers,
		l.metrics.eventsProcessed.Load(),
		l.metrics.totalBytesRead.Load(),
		l.metrics.totalBytesWritten.Load(),
		l.metrics.padBytesWritten.Load(),
		l.metrics.numAioWritesCompleted.Load(),
		l.metrics.cyclesAwake.Load(),
		l.metrics.cyclesScanningAndCompressing.Load(),
		l.metrics.cyclesAioAndFsync.Load(),
	)
}
