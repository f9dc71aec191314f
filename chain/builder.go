// Package chain lays out a linear chain of spheres linked by spherical joints.
//
// The first body of a chain is a kinematic, player controlled head; every
// following body is dynamic and hangs from its predecessor. Build only
// produces descriptors, registering them with a solver is done through Spawn.
package chain

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidParameter is returned when the chain cannot be built from the given parameters
var ErrInvalidParameter = errors.New("invalid chain parameter")

// LinkDensity is the density used for the mass of every dynamic link
const LinkDensity = 1.0

// Params describes where and how a chain is laid out
type Params struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Count     int
	// Spacing is the gap between two neighbouring spheres
	Spacing  float64
	NodeSize float64
	// Compliance of every joint, 0 is rigid
	Compliance float64
	// MoveSpeed is attached to the head as a PlayerControlled role
	MoveSpeed float64
}

// BodyDescriptor is one element of the chain
type BodyDescriptor struct {
	Kind     actor.BodyType
	Position mgl64.Vec3
	// Scale is the visual size of the node
	Scale float64
	// Radius of the collision sphere
	Radius float64
	// Mass and Inertia are only set for dynamic bodies
	Mass    float64
	Inertia mgl64.Mat3
	Role    actor.Role
}

// JointDescriptor links Bodies[BodyA] to Bodies[BodyB]
type JointDescriptor struct {
	BodyA        int
	BodyB        int
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3
	Compliance   float64
}

// Chain holds count bodies and count-1 joints, joint i links body i and i+1
type Chain struct {
	Bodies []BodyDescriptor
	Joints []JointDescriptor
	// Head is the index of the controlled body
	Head int
}

// Tail returns the index of the last body
func (c *Chain) Tail() int {
	return len(c.Bodies) - 1
}

// Validate checks p without building anything
func (p Params) Validate() error {
	if p.Count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidParameter, p.Count)
	}
	if !isFinite(p.NodeSize) || p.NodeSize <= 0 {
		return fmt.Errorf("%w: node size must be positive, got %v", ErrInvalidParameter, p.NodeSize)
	}
	if !isFinite(p.Spacing) || p.Spacing < 0 {
		return fmt.Errorf("%w: spacing must not be negative, got %v", ErrInvalidParameter, p.Spacing)
	}
	if !isFinite(p.Compliance) || p.Compliance < 0 {
		return fmt.Errorf("%w: compliance must not be negative, got %v", ErrInvalidParameter, p.Compliance)
	}
	if !isFinite(p.MoveSpeed) {
		return fmt.Errorf("%w: move speed must be finite, got %v", ErrInvalidParameter, p.MoveSpeed)
	}
	for i := 0; i < 3; i++ {
		if !isFinite(p.Origin[i]) || !isFinite(p.Direction[i]) {
			return fmt.Errorf("%w: origin and direction must be finite", ErrInvalidParameter)
		}
	}
	if p.Direction.Len() == 0 {
		return fmt.Errorf("%w: direction has zero length", ErrInvalidParameter)
	}

	return nil
}

// Build lays the chain out from Origin, each body one step further against Direction.
// Nothing is built when the parameters are invalid.
func Build(p Params) (*Chain, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	direction := p.Direction.Normalize()
	radius := p.NodeSize * 0.5

	c := &Chain{
		Bodies: make([]BodyDescriptor, 0, p.Count),
		Joints: make([]JointDescriptor, 0, p.Count-1),
		Head:   0,
	}

	c.Bodies = append(c.Bodies, BodyDescriptor{
		Kind:     actor.BodyTypeKinematic,
		Position: p.Origin,
		Scale:    p.NodeSize,
		Radius:   radius,
		Role:     actor.PlayerControlled(p.MoveSpeed),
	})

	sphere := &actor.Sphere{Radius: radius}
	mass := sphere.ComputeMass(LinkDensity)
	inertia := sphere.ComputeInertia(mass)

	// Spacing is uniform, so every joint shares the same per-step offset
	delta := direction.Mul(-(p.NodeSize + p.Spacing))

	for i := 1; i < p.Count; i++ {
		c.Bodies = append(c.Bodies, BodyDescriptor{
			Kind:     actor.BodyTypeDynamic,
			Position: p.Origin.Add(delta.Mul(float64(i))),
			Scale:    p.NodeSize,
			Radius:   radius,
			Mass:     mass,
			Inertia:  inertia,
		})

		c.Joints = append(c.Joints, JointDescriptor{
			BodyA:        i - 1,
			BodyB:        i,
			LocalAnchorA: delta.Mul(0.5),
			LocalAnchorB: delta.Mul(-0.5),
			Compliance:   p.Compliance,
		})
	}

	return c, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
