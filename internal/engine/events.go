package engine

// EventType names an input event delivered to the engine.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventPointerMove EventType = "pointermove"
	EventPointerUp   EventType = "pointerup"
	EventClick       EventType = "click"
	EventResize      EventType = "resize"
)

// Event is one input event. Pointer events use X and Y in surface pixels;
// resize events use Width and Height.
type Event struct {
	Type   EventType
	X, Y   float64
	Width  int
	Height int
}

// Listener handles one event.
type Listener func(Event)

// Events is the engine's input listener registry. It is not safe for
// concurrent use; dispatch from the engine's loop.
type Events struct {
	next      int
	listeners map[EventType]map[int]Listener
}

// NewEvents returns an empty registry.
func NewEvents() *Events {
	return &Events{listeners: make(map[EventType]map[int]Listener)}
}

// Attach registers fn for events of type t and returns a function that
// detaches it. Detaching twice is harmless.
func (b *Events) Attach(t EventType, fn Listener) (detach func()) {
	b.next++
	id := b.next
	if b.listeners[t] == nil {
		b.listeners[t] = make(map[int]Listener)
	}
	b.listeners[t][id] = fn
	return func() {
		delete(b.listeners[t], id)
		if len(b.listeners[t]) == 0 {
			delete(b.listeners, t)
		}
	}
}

// Dispatch delivers ev to every listener for its type and reports whether
// any listener received it.
func (b *Events) Dispatch(ev Event) bool {
	ls := b.listeners[ev.Type]
	for _, fn := range ls {
		fn(ev)
	}
	return len(ls) > 0
}

// Count returns the number of attached listeners.
func (b *Events) Count() int {
	n := 0
	for _, ls := range b.listeners {
		n += len(ls)
	}
	return n
}
