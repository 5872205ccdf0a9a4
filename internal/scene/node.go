// Package scene holds the globe's scene graph: an ownership tree of nodes
// carrying meshes, the resources those meshes hold, the camera, and the
// builder that populates the whole thing from the satellite catalog.
//
// Nodes keep explicit parent links. Only satellite group nodes carry a Tag;
// picking resolves a hit leaf to its satellite by walking parents until a
// tagged node is found.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// GeometryKind is the shape a Geometry describes.
type GeometryKind int

const (
	GeometrySphere GeometryKind = iota
	GeometryRing
	GeometryLine
	GeometryPoints
)

// Geometry is vertex data for a mesh. Spheres and rings are analytic;
// lines and point clouds carry explicit points.
type Geometry struct {
	Kind     GeometryKind
	Radius   float64
	Segments int

	Points []mgl64.Vec3
	Sizes  []float64

	// DrawCount limits how many points are drawn. A negative value draws
	// all of them.
	DrawCount int

	res *Resource
}

// Side selects which faces of a mesh are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
)

// Blending selects how a material composites.
type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

// GlowUniforms are the parameters of the rim-lighting glow shader.
type GlowUniforms struct {
	C          float64
	P          float64
	GlowColor  colorful.Color
	ViewVector mgl64.Vec3
}

// Material describes how a mesh is shaded.
type Material struct {
	Color             colorful.Color
	Emissive          colorful.Color
	EmissiveIntensity float64
	Specular          colorful.Color
	Shininess         float64
	Opacity           float64
	Transparent       bool
	Side              Side
	Blending          Blending

	Map         *Texture
	BumpMap     *Texture
	BumpScale   float64
	SpecularMap *Texture

	Glow *GlowUniforms

	res *Resource
}

// Textures returns the material's texture slots that are set.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.BumpMap, m.SpecularMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Mesh pairs a geometry with a material. Pickable meshes take part in ray
// intersection.
type Mesh struct {
	Geometry *Geometry
	Material *Material
	Pickable bool
}

// Light is a scene light.
type Light struct {
	Kind      string // ambient, directional, point
	Color     colorful.Color
	Intensity float64
	Distance  float64
}

// Node is one element of the scene graph.
type Node struct {
	Name     string
	Tag      string
	Position mgl64.Vec3
	Rotation mgl64.Vec3 // Euler angles (radians), applied X then Y then Z
	Scale    float64
	Visible  bool

	Mesh  *Mesh
	Light *Light

	parent   *Node
	children []*Node
}

// NewNode returns a visible node with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: 1, Visible: true}
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's direct children.
func (n *Node) Children() []*Node { return n.children }

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Traverse calls fn for n and every descendant, parents first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Owner walks from n up through its parents and returns the first tag found.
func (n *Node) Owner() (string, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Tag != "" {
			return cur.Tag, true
		}
	}
	return "", false
}

// LocalMatrix returns translate * rotate * scale for this node alone.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DZ(n.Rotation.Z()).
		Mul4(mgl64.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl64.HomogRotate3DX(n.Rotation.X()))
	return mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z()).
		Mul4(rot).
		Mul4(mgl64.Scale3D(n.Scale, n.Scale, n.Scale))
}

// WorldMatrix composes the local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
}

// WorldScale returns the product of uniform scales from the root down to n.
func (n *Node) WorldScale() float64 {
	s := n.Scale
	for p := n.parent; p != nil; p = p.parent {
		s *= p.Scale
	}
	return s
}

// WorldVisible reports whether n and all its ancestors are visible.
func (n *Node) WorldVisible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}

// Dispose releases every resource held by n and its descendants: each
// mesh's geometry, material, and the material's textures. Resources shared
// between meshes are released once.
func (n *Node) Dispose() {
	n.Traverse(func(c *Node) {
		if c.Mesh == nil {
			return
		}
		if g := c.Mesh.Geometry; g != nil && g.res != nil {
			g.res.Release()
		}
		if m := c.Mesh.Material; m != nil {
			for _, t := range m.Textures() {
				t.release()
			}
			if m.res != nil {
				m.res.Release()
			}
		}
	})
}
