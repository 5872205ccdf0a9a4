package demo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/large-farva/orbital-globe/internal/catalog"
)

func TestRunnerCyclesCatalogAndClearsOnExit(t *testing.T) {
	reg := catalog.MustRegistry([]catalog.Satellite{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	})

	var mu sync.Mutex
	var got []string
	seen := make(chan struct{}, 16)
	r := New(reg, func(_ context.Context, id string) error {
		mu.Lock()
		got = append(got, id)
		mu.Unlock()
		select {
		case seen <- struct{}{}:
		default:
		}
		return nil
	})
	r.StartDelay = 0
	r.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-seen:
		case <-time.After(5 * time.Second):
			t.Fatal("runner stalled")
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) < 4 {
		t.Fatalf("selections = %v", got)
	}
	want := []string{"a", "b", "a"}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("selection %d = %q, want %q (all: %v)", i, got[i], id, got)
		}
	}
	if last := got[len(got)-1]; last != "" {
		t.Errorf("final selection = %q, want cleared", last)
	}
}

func TestRunnerWithEmptyCatalogReturns(t *testing.T) {
	reg := catalog.MustRegistry(nil)
	r := New(reg, func(context.Context, string) error {
		t.Error("select called on empty catalog")
		return nil
	})

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestSleepOrCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepOrCancel(ctx, time.Hour) {
		t.Fatal("cancelled context slept")
	}
	if !sleepOrCancel(context.Background(), time.Millisecond) {
		t.Fatal("short sleep reported cancel")
	}
}
