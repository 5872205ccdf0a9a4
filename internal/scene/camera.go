package scene

import "github.com/go-gl/mathgl/mgl64"

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns the globe's default camera: 3.5 units out on +Z looking
// at the origin.
func NewCamera(fov, aspect float64) *Camera {
	return &Camera{
		Position: mgl64.Vec3{0, 0, 3.5},
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

// SetAspect matches the camera to a width x height surface. A zero-area
// surface leaves the camera unchanged and returns false.
func (c *Camera) SetAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Aspect = float64(width) / float64(height)
	return true
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// RayFromNDC casts a ray from the camera through normalized device
// coordinates (x, y), each in [-1, 1] with +y up.
func (c *Camera) RayFromNDC(x, y float64) Ray {
	inv := c.Projection().Mul4(c.View()).Inv()

	unproject := func(z float64) mgl64.Vec3 {
		p := inv.Mul4x1(mgl64.Vec4{x, y, z, 1})
		return p.Vec3().Mul(1 / p.W())
	}
	near := unproject(-1)
	far := unproject(1)

	return Ray{Origin: c.Position, Dir: far.Sub(near).Normalize()}
}

// Project maps a world point to normalized device coordinates.
func (c *Camera) Project(p mgl64.Vec3) (x, y float64) {
	v := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	return v.X() / v.W(), v.Y() / v.W()
}
