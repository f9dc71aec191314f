package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypePlane
)

// PlaneContact is a single contact point between a shape and a plane, in world space
type PlaneContact struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ShapeInterface is the interface that all collision shapes must implement
type ShapeInterface interface {
	Type() ShapeType
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	// CollideWithPlane tests the shape placed at transform against the plane
	// passing through point with the given unit normal
	CollideWithPlane(normal, point mgl64.Vec3, transform Transform) (bool, []PlaneContact)
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
	aabb   AABB
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// Solid sphere: I = (2/5) * m * r²
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

// CollideWithPlane returns the deepest point of the sphere below the plane
func (s *Sphere) CollideWithPlane(normal, point mgl64.Vec3, transform Transform) (bool, []PlaneContact) {
	distance := transform.Position.Sub(point).Dot(normal)
	penetration := s.Radius - distance
	if penetration <= 0 {
		return false, nil
	}

	return true, []PlaneContact{{
		Position:    transform.Position.Sub(normal.Mul(s.Radius)),
		Penetration: penetration,
	}}
}

// Plane represents an infinite plane collision shape
// The plane is defined by the equation: Normal · p + Distance = 0
// where Normal is the plane's normal vector (must be normalized)
// and Distance is the signed distance from the origin along the normal
type Plane struct {
	Normal   mgl64.Vec3 // Plane normal (must be normalized)
	Distance float64    // Plane constant (signed distance from origin)
	aabb     AABB
}

func (p *Plane) Type() ShapeType {
	return ShapeTypePlane
}

// Origin returns the point of the plane closest to the body's position
func (p *Plane) Origin(transform Transform) mgl64.Vec3 {
	return p.Normal.Mul(-p.Distance).Add(transform.Position)
}

func (p *Plane) ComputeAABB(transform Transform) {
	const thickness = 1.0
	const infinity = 1e10

	planePoint := p.Origin(transform)

	// Base bounds with thickness below the surface
	min := planePoint.Sub(p.Normal.Mul(thickness))
	max := planePoint

	// Axes not aligned with the normal extend to infinity
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p.Normal[axis]) < 1.0 {
			min[axis] = -infinity
			max[axis] = infinity
		} else if min[axis] > max[axis] {
			min[axis], max[axis] = max[axis], min[axis]
		}
	}

	p.aabb = AABB{Min: min, Max: max}
}

func (p *Plane) GetAABB() AABB {
	return p.aabb
}

// ComputeMass calculates mass data for the plane
// Planes are always static with infinite mass
func (p *Plane) ComputeMass(density float64) float64 {
	return math.Inf(1)
}

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// CollideWithPlane never reports plane/plane contacts
func (p *Plane) CollideWithPlane(normal, point mgl64.Vec3, transform Transform) (bool, []PlaneContact) {
	return false, nil
}
