package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return l, cancel
}

func TestLoopRunsFramesAndReschedules(t *testing.T) {
	l, _ := startLoop(t)

	got := make(chan time.Time, 3)
	count := 0
	var frame func(time.Time)
	frame = func(now time.Time) {
		count++
		got <- now
		if count < 3 {
			l.RequestFrame(frame)
		}
	}
	l.Post(func() { l.RequestFrame(frame) })

	var prev time.Time
	for i := 0; i < 3; i++ {
		select {
		case now := <-got:
			if !now.After(prev) {
				t.Fatalf("frame %d at %v not after %v", i, now, prev)
			}
			prev = now
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d never ran", i)
		}
	}
}

func TestLoopCancelFrame(t *testing.T) {
	l, _ := startLoop(t)

	ran := make(chan struct{}, 1)
	err := l.Do(context.Background(), func() {
		id := l.RequestFrame(func(time.Time) { ran <- struct{}{} })
		l.CancelFrame(id)
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
		t.Fatal("cancelled frame ran")
	case <-time.After(50 * time.Millisecond):
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d", l.Pending())
	}
}

func TestLoopTimers(t *testing.T) {
	l, _ := startLoop(t)

	fired := make(chan string, 2)
	var stopped bool
	l.Do(context.Background(), func() {
		l.AfterFunc(10*time.Millisecond, func() { fired <- "kept" })
		tm := l.AfterFunc(10*time.Millisecond, func() { fired <- "stopped" })
		stopped = tm.Stop()
	})
	if !stopped {
		t.Fatal("Stop() on a pending timer returned false")
	}

	select {
	case name := <-fired:
		if name != "kept" {
			t.Fatalf("fired %q", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	select {
	case name := <-fired:
		t.Fatalf("stopped timer fired: %q", name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoopRejectsWorkAfterStop(t *testing.T) {
	l, cancel := startLoop(t)

	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for l.Post(func() {}) {
		select {
		case <-deadline:
			t.Fatal("Post() still accepted work after cancel")
		case <-time.After(time.Millisecond):
		}
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Do() after stop error = %v, want ErrLoopStopped", err)
	}
}
