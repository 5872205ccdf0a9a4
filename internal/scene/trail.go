package scene

import "github.com/go-gl/mathgl/mgl64"

// Trail is a fixed-capacity ring buffer of recent positions. Once full, each
// push drops the oldest point.
type Trail struct {
	buf   []mgl64.Vec3
	start int
	n     int
}

// NewTrail returns an empty trail holding at most capacity points.
func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{buf: make([]mgl64.Vec3, capacity)}
}

// Push appends p, evicting the oldest point when full.
func (t *Trail) Push(p mgl64.Vec3) {
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = p
		t.n++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

// Len returns the number of points held.
func (t *Trail) Len() int { return t.n }

// Cap returns the trail capacity.
func (t *Trail) Cap() int { return len(t.buf) }

// Points copies the held points into dst (oldest first) and returns it.
func (t *Trail) Points(dst []mgl64.Vec3) []mgl64.Vec3 {
	dst = dst[:0]
	for i := 0; i < t.n; i++ {
		dst = append(dst, t.buf[(t.start+i)%len(t.buf)])
	}
	return dst
}
