package scene

import (
	"fmt"
	"sync"
)

// ResourceKind classifies a releasable scene resource.
type ResourceKind int

const (
	KindGeometry ResourceKind = iota
	KindMaterial
	KindTexture
)

func (k ResourceKind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindMaterial:
		return "material"
	case KindTexture:
		return "texture"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resource is a handle on one graphics resource. Release is idempotent;
// only the first call is counted.
type Resource struct {
	id       uint64
	kind     ResourceKind
	label    string
	released bool
	tracker  *Tracker
}

// Kind returns the resource's kind.
func (r *Resource) Kind() ResourceKind { return r.kind }

// Label returns the human-readable name given at acquisition.
func (r *Resource) Label() string { return r.label }

// Released reports whether Release has been called.
func (r *Resource) Released() bool {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	return r.released
}

// Release frees the resource. Calling it again is a no-op.
func (r *Resource) Release() {
	t := r.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	delete(t.live, r.id)
	t.released++
	if t.onChange != nil {
		t.onChange(len(t.live))
	}
}

// Tracker counts every resource acquired and released so teardown can be
// checked for leaks.
type Tracker struct {
	mu       sync.Mutex
	next     uint64
	live     map[uint64]*Resource
	created  int
	released int
	onChange func(live int)
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{live: make(map[uint64]*Resource)}
}

// OnChange registers fn to observe the live resource count.
func (t *Tracker) OnChange(fn func(live int)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Acquire creates a new live resource.
func (t *Tracker) Acquire(kind ResourceKind, label string) *Resource {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	r := &Resource{id: t.next, kind: kind, label: label, tracker: t}
	t.live[r.id] = r
	t.created++
	if t.onChange != nil {
		t.onChange(len(t.live))
	}
	return r
}

// Created returns the number of resources ever acquired.
func (t *Tracker) Created() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.created
}

// Released returns the number of resources released.
func (t *Tracker) Released() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// Live returns the labels of resources not yet released.
func (t *Tracker) Live() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.live))
	for _, r := range t.live {
		out = append(out, r.kind.String()+":"+r.label)
	}
	return out
}
