package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopStopped is returned when work is handed to a loop that has exited.
var ErrLoopStopped = errors.New("engine loop stopped")

// FrameID identifies a requested frame callback. The zero value is never
// issued.
type FrameID uint64

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler is the host's callback scheduling surface: per-frame callbacks
// and one-shot timers. Every callback runs on the same goroutine.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is a cooperative single-goroutine scheduler. Posted tasks, frame
// callbacks and timer callbacks all run inside Run, one at a time, so code
// running on the loop needs no locking.
type Loop struct {
	interval time.Duration
	tasks    chan func()
	done     chan struct{}
	started  atomic.Bool

	mu     sync.Mutex
	nextID FrameID
	frames map[FrameID]func(time.Time)
	order  []FrameID
}

// NewLoop returns a loop that fires frame callbacks every interval.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		interval: interval,
		tasks:    make(chan func(), 256),
		done:     make(chan struct{}),
		frames:   make(map[FrameID]func(time.Time)),
	}
}

// Interval returns the frame period.
func (l *Loop) Interval() time.Duration { return l.interval }

// Run executes tasks and frames until ctx is cancelled. It must be called
// exactly once.
func (l *Loop) Run(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		panic("engine: Loop.Run called twice")
	}
	defer close(l.done)

	tick := time.NewTicker(l.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case fn := <-l.tasks:
			fn()
		case now := <-tick.C:
			l.runFrames(now)
		}
	}
}

// drain runs tasks already queued so shutdown work posted just before
// cancellation (teardown, for one) still happens.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			return
		}
	}
}

// Post queues fn to run on the loop. It reports false if the loop has
// exited.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The task may have been drained on the way out.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// RequestFrame schedules fn for the next frame tick. Callbacks requested
// while a frame is running fire on the following tick.
func (l *Loop) RequestFrame(fn func(now time.Time)) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.frames[l.nextID] = fn
	l.order = append(l.order, l.nextID)
	return l.nextID
}

// CancelFrame drops a pending frame callback.
func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	delete(l.frames, id)
	l.mu.Unlock()
}

// Pending returns the number of frame callbacks waiting for the next tick.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

func (l *Loop) runFrames(now time.Time) {
	l.mu.Lock()
	order := l.order
	l.order = nil
	due := make([]func(time.Time), 0, len(order))
	for _, id := range order {
		if fn, ok := l.frames[id]; ok {
			due = append(due, fn)
			delete(l.frames, id)
		}
	}
	l.mu.Unlock()

	for _, fn := range due {
		fn(now)
	}
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer *time.Timer
	fired atomic.Bool // set once the callback ran or was stopped
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
