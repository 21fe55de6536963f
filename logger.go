package nanolog

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// loggerMetrics holds the worker's metric counters (cyclesAwake,
// cyclesScanningAndCompressing, cyclesAioAndFsync, totalBytesRead/
// Written, padBytesWritten, eventsProcessed, numAioWritesCompleted).
// There is no separate cyclesCompressing counter: compression time is
// part of cyclesScanningAndCompressing.
// Every field is atomic so printStats (§6.1) can read them without
// taking condMu, per spec.md §5's "reads by printStats must be tolerant
// of torn reads or take condMutex" — atomics sidestep the torn-read
// concern entirely.
type loggerMetrics struct {
	cyclesAwake                  atomic.Uint64
	cyclesScanningAndCompressing atomic.Uint64
	cyclesAioAndFsync            atomic.Uint64
	totalBytesRead               atomic.Uint64
	totalBytesWritten            atomic.Uint64
	padBytesWritten              atomic.Uint64
	eventsProcessed              atomic.Uint64
	numAioWritesCompleted        atomic.Uint64
}

type fileSwapRequest struct {
	path string
	done chan error
}

// Logger is the process-wide singleton of spec.md §4.C: it owns the
// registry of live StagingBuffers, the background worker, the output
// file, and the double-buffered compressing area.
type Logger struct {
	cfg Config
	gc  GeneratedCode

	registryMu   sync.Mutex
	registry     []*StagingBuffer
	nextBufferID uint32

	condMu                      sync.Mutex
	workAdded                   *sync.Cond
	hintQueueEmptied            *sync.Cond
	syncRequested               bool
	compressionThreadShouldExit bool
	pendingSwap                 *fileSwapRequest

	// The following fields are touched only by the worker goroutine once
	// it is running; they need no synchronization of their own.
	outFile                 *os.File
	fileOffset              int64
	aio                     asyncWriter
	hasOutstandingOperation bool
	compressing             []byte
	compressingLen          int
	doubleBuffer            []byte
	releaseCompressing      func()
	releaseDouble           func()

	workerDone chan struct{}

	metrics loggerMetrics
}

// NewLogger constructs a Logger against an initial output file and
// starts its background worker. gc supplies the per-call-site compress/
// decompress/metadata table (spec.md §6.4); path is opened with the
// append-or-create-with-truncate semantics of spec.md §6.2.
func NewLogger(cfg Config, gc GeneratedCode, path string) (*Logger, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		cfg:          cfg,
		gc:           gc,
		nextBufferID: 1,
		workerDone:   make(chan struct{}),
	}
	l.workAdded = sync.NewCond(&l.condMu)
	l.hintQueueEmptied = sync.NewCond(&l.condMu)
	l.aio = newAsyncWriter(cfg.UseAIO)

	compressing, relC, err := allocBuffer(cfg.OutputBufferSize)
	if err != nil {
		return nil, err
	}
	double, relD, err := allocBuffer(cfg.OutputBufferSize)
	if err != nil {
		relC()
		return nil, err
	}
	l.compressing = compressing
	l.releaseCompressing = relC
	l.doubleBuffer = double
	l.releaseDouble = relD

	if err := l.openFile(path); err != nil {
		relC()
		relD()
		return nil, err
	}

	go l.workerLoop()
	return l, nil
}

func (l *Logger) openFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &ConfigError{Msg: "open log file " + path, Err: err}
	}
	l.outFile = f
	l.fileOffset = 0
	return nil
}

func (l *Logger) swapFile(path string) error {
	if l.outFile != nil {
		_ = l.outFile.Close()
	}
	return l.openFile(path)
}

// SetLogFile implements spec.md §4.C: it asks the worker to drain and
// flush everything against the current file, close it, and reopen path
// (truncating any existing contents), then blocks until that has
// happened or failed.
func (l *Logger) SetLogFile(path string) error {
	req := &fileSwapRequest{path: path, done: make(chan error, 1)}

	l.condMu.Lock()
	l.pendingSwap = req
	l.condMu.Unlock()
	l.workAdded.Signal()

	return <-req.done
}

// Sync blocks until every record committed before this call has been
// compressed, submitted, and its async write has completed — the
// happens-before edge spec.md §5 promises.
func (l *Logger) Sync() {
	l.condMu.Lock()
	l.syncRequested = true
	l.condMu.Unlock()
	l.workAdded.Signal()

	l.condMu.Lock()
	for l.syncRequested {
		l.hintQueueEmptied.Wait()
	}
	l.condMu.Unlock()
}

// Preallocate forces creation of a fresh StagingBuffer and returns the
// Producer handle that owns it (spec.md §4.C / §9: "Useful to keep the
// first log call cheap").
func (l *Logger) Preallocate() *Producer {
	buf := l.newBuffer()
	p := &Producer{buf: buf, log: l}
	runtime.SetFinalizer(p, finalizeProducer)
	return p
}

func (l *Logger) newBuffer() *StagingBuffer {
	l.registryMu.Lock()
	id := l.nextBufferID
	l.nextBufferID++
	l.registryMu.Unlock()

	// The expensive allocation happens outside the mutex; only the
	// list-splice below is protected (spec.md §4.C, registry coordination).
	buf, err := newStagingBuffer(id, l.cfg.StagingBufferSize)
	if err != nil {
		panic(err)
	}

	l.registryMu.Lock()
	l.registry = append(l.registry, buf)
	l.registryMu.Unlock()
	return buf
}

// Close signals the worker to exit, waits for it to drain every buffer
// and flush the output file, then releases the double buffers. It is
// the strict shutdown barrier of spec.md §4.E.
func (l *Logger) Close() error {
	l.condMu.Lock()
	l.compressionThreadShouldExit = true
	l.condMu.Unlock()
	l.workAdded.Signal()

	<-l.workerDone

	l.registryMu.Lock()
	remaining := l.registry
	l.registry = nil
	l.registryMu.Unlock()
	for _, b := range remaining {
		// Per spec.md §4.E step 4, every remaining buffer must satisfy
		// canDelete() by now; a producer still logging after the
		// shutdown signal is the documented-undefined "shutdown race"
		// of spec.md §7, not something this method can recover from.
		b.release()
	}

	l.releaseCompressing()
	l.releaseDouble()
	return nil
}

// waitWorkOrTimeout must be called with condMu held. It waits on
// workAdded but gives up after d so the worker can re-poll
// compressionThreadShouldExit, matching spec.md §5's bounded wait.
func (l *Logger) waitWorkOrTimeout(d time.Duration) {
	timer := time.AfterFunc(d, func() {
		l.condMu.Lock()
		l.workAdded.Broadcast()
		l.condMu.Unlock()
	})
	defer timer.Stop()
	l.workAdded.Wait()
}

// workerLoop is the single background thread of spec.md §4.C's five
// numbered steps.
func (l *Logger) workerLoop() {
	defer close(l.workerDone)

	for {
		awakeStart := rdtsc()

		for l.drainPass() > 0 {
			// Keep draining while buffers keep producing bytes, mirroring
			// the original's tight scan-and-compress loop before it
			// bothers checking for idle/exit/sync conditions.
		}
		l.metrics.cyclesScanningAndCompressing.Add(rdtsc() - awakeStart)

		pending, pollErr := l.aio.poll()
		if !pending && l.hasOutstandingOperation {
			// poll has already collected the outstanding write's result;
			// clearing the flag keeps waitOutstanding from counting or
			// reporting it a second time.
			l.hasOutstandingOperation = false
			l.metrics.numAioWritesCompleted.Add(1)
			if pollErr != nil {
				fmt.Fprintf(os.Stderr, "nanolog: async write failed: %v\n", pollErr)
			}
		}

		l.condMu.Lock()

		if !pending {
			if l.pendingSwap != nil {
				req := l.pendingSwap
				l.pendingSwap = nil
				l.condMu.Unlock()

				l.flushRemainder()
				err := l.swapFile(req.path)
				req.done <- err

				l.condMu.Lock()
			}

			if l.syncRequested {
				l.condMu.Unlock()
				l.flushRemainder()
				l.condMu.Lock()
				l.syncRequested = false
			}

			l.hintQueueEmptied.Broadcast()
		}

		if l.compressionThreadShouldExit {
			l.condMu.Unlock()
			l.flushRemainder()
			if l.outFile != nil {
				_ = l.outFile.Close()
			}
			return
		}

		l.metrics.cyclesAwake.Add(rdtsc() - awakeStart)

		if !pending && l.pendingSwap == nil && !l.syncRequested {
			l.waitWorkOrTimeout(l.cfg.PollIntervalNoWork)
		}
		l.condMu.Unlock()
	}
}

// drainPass makes one full pass over a snapshot of the registry,
// compressing whatever records are available and reclaiming buffers
// whose owner has exited and drained clean. It returns the number of
// payload bytes moved into the compressing buffer this pass, so the
// caller can tell an active pass from an idle one.
func (l *Logger) drainPass() uint64 {
	l.registryMu.Lock()
	snapshot := make([]*StagingBuffer, len(l.registry))
	copy(snapshot, l.registry)
	l.registryMu.Unlock()

	var total uint64
	var dead []*StagingBuffer
	for _, buf := range snapshot {
		n, removed := l.drainBuffer(buf)
		total += n
		if removed {
			dead = append(dead, buf)
		}
	}

	if len(dead) > 0 {
		l.registryMu.Lock()
		for _, victim := range dead {
			for i, b := range l.registry {
				if b == victim {
					l.registry = append(l.registry[:i], l.registry[i+1:]...)
					break
				}
			}
		}
		l.registryMu.Unlock()
		for _, victim := range dead {
			victim.release()
		}
	}

	return total
}

// drainBuffer drains as many complete records as are available from one
// StagingBuffer's current peek() span, per spec.md §4.C step 2.
func (l *Logger) drainBuffer(buf *StagingBuffer) (bytes uint64, removed bool) {
	data := buf.peek()
	if data == nil {
		return 0, buf.canDelete()
	}

	var offset uint64
	for {
		total, ok := nextRecordLen(data[offset:])
		if !ok {
			break
		}

		remaining := len(l.compressing) - l.compressingLen
		if uint64(remaining) < total {
			if l.compressingLen == 0 {
				// A single record larger than the entire output buffer
				// can never be drained; that is a configuration error,
				// not a runtime condition to paper over.
				panic("nanolog: record larger than Config.OutputBufferSize")
			}
			l.rotate()
			continue
		}

		copy(l.compressing[l.compressingLen:], data[offset:offset+total])
		l.compressingLen += int(total)
		buf.consume(total)

		l.metrics.eventsProcessed.Add(1)
		l.metrics.totalBytesRead.Add(total)
		offset += total
	}

	if l.compressingLen >= l.cfg.PollIntervalBytes {
		l.rotate()
	}

	return offset, false
}

// rotate pads the active compressing buffer to the configured file
// alignment, submits it asynchronously, and swaps in the idle double
// buffer (spec.md §4.C step 3, §4.D).
func (l *Logger) rotate() {
	if l.hasOutstandingOperation {
		l.waitOutstanding()
	}

	align := l.cfg.FileAlignmentBytes
	padded := ((l.compressingLen + align - 1) / align) * align
	if padded > len(l.compressing) {
		padded = len(l.compressing)
	}
	pad := padded - l.compressingLen
	for i := 0; i < pad; i++ {
		l.compressing[l.compressingLen+i] = PadByte
	}
	l.metrics.padBytesWritten.Add(uint64(pad))

	if padded > 0 {
		l.aio.submit(l.outFile, l.compressing[:padded], l.fileOffset)
		l.hasOutstandingOperation = true
		l.fileOffset += int64(padded)
		l.metrics.totalBytesWritten.Add(uint64(padded))
	}

	l.compressing, l.doubleBuffer = l.doubleBuffer, l.compressing
	l.compressingLen = 0
}

func (l *Logger) waitOutstanding() {
	start := rdtsc()
	err := l.aio.wait()
	l.hasOutstandingOperation = false
	l.metrics.numAioWritesCompleted.Add(1)
	l.metrics.cyclesAioAndFsync.Add(rdtsc() - start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nanolog: async write failed: %v\n", err)
	}
}

// flushRemainder drains every staging buffer (picking up records
// committed after the worker's last pass), forces out whatever is
// sitting in the compressing buffer even if it hasn't hit the high-water
// mark, waits for any outstanding write, and fsyncs — the common tail of
// sync(), setLogFile() and shutdown (spec.md §4.C step 4, §4.E step 3).
func (l *Logger) flushRemainder() {
	for l.drainPass() > 0 {
	}
	if l.compressingLen > 0 {
		l.rotate()
	}
	if l.hasOutstandingOperation {
		l.waitOutstanding()
	}
	if l.outFile != nil {
		start := rdtsc()
		if err := l.outFile.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "nanolog: fsync failed: %v\n", err)
		}
		l.metrics.cyclesAioAndFsync.Add(rdtsc() - start)
	}
}
