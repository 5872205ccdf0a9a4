package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectSphere returns the distance to the nearest point where the ray
// enters (or, from inside, leaves) the sphere.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Hit is one ray intersection with a mesh node.
type Hit struct {
	Node     *Node
	Distance float64
	Point    mgl64.Vec3
}

// Intersect tests ray against every visible, pickable sphere or ring mesh
// under roots and returns the hits nearest first.
func Intersect(ray Ray, roots ...*Node) []Hit {
	var hits []Hit
	for _, root := range roots {
		root.Traverse(func(n *Node) {
			if n.Mesh == nil || !n.Mesh.Pickable || !n.WorldVisible() {
				return
			}
			g := n.Mesh.Geometry
			if g == nil || (g.Kind != GeometrySphere && g.Kind != GeometryRing) {
				return
			}
			center := n.WorldPosition()
			if t, ok := ray.IntersectSphere(center, g.Radius*n.WorldScale()); ok {
				hits = append(hits, Hit{Node: n, Distance: t, Point: ray.At(t)})
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// Pick returns the tag owning the nearest hit under roots.
func Pick(ray Ray, roots ...*Node) (string, Hit, bool) {
	hits := Intersect(ray, roots...)
	if len(hits) == 0 {
		return "", Hit{}, false
	}
	tag, ok := hits[0].Node.Owner()
	return tag, hits[0], ok
}
