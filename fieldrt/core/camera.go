package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fixed perspective camera looking down -Z at the particle plane.
type Camera struct {
	FovYDegrees float32
	Near, Far   float32
	Eye         mgl32.Vec3
}

func NewCamera() Camera {
	return Camera{
		FovYDegrees: 45,
		Near:        0.1,
		Far:         100,
		Eye:         mgl32.Vec3{0, 0, 3.1},
	}
}

func (c Camera) View() mgl32.Mat4 {
	target := mgl32.Vec3{c.Eye.X(), c.Eye.Y(), 0}
	return mgl32.LookAtV(c.Eye, target, mgl32.Vec3{0, 1, 0})
}

func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovYDegrees), aspect, c.Near, c.Far)
}

func (c Camera) ViewProj(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// HalfHeight is the half extent of the visible area on the z=0 plane.
func (c Camera) HalfHeight() float32 {
	return float32(math.Tan(float64(mgl32.DegToRad(c.FovYDegrees))/2)) * c.Eye.Z()
}

// PointerToPlane maps a normalized pointer in [-1,1]^2 to a point on the z=0 plane.
func (c Camera) PointerToPlane(p mgl32.Vec2, aspect float32) mgl32.Vec2 {
	h := c.HalfHeight()
	return mgl32.Vec2{
		c.Eye.X() + p.X()*h*aspect,
		c.Eye.Y() + p.Y()*h,
	}
}
