package constraint

import (
	"math"

	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Compliance of common materials (m/N), usable as joint compliance
const (
	RigidCompliance    = 0.0
	ConcreteCompliance = 0.04e-9
	WoodCompliance     = 0.16e-9
	LeatherCompliance  = 14e-8
	TendonCompliance   = 0.2e-7
	RubberCompliance   = 1e-6
	MuscleCompliance   = 0.2e-3
	FatCompliance      = 1e-3
)

type Constraint interface {
	SolvePosition(dt float64)
	SolveVelocity(dt float64)
}

// ComputeRestitution averages both materials
func ComputeRestitution(matA, matB actor.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

func ComputeStaticFriction(matA, matB actor.Material) float64 {
	// Geometric mean
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

func ComputeDynamicFriction(matA, matB actor.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

func clampSmallVelocities(rb *actor.RigidBody) {
	const velocityThreshold = 1e-5

	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{0, 0, 0}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{0, 0, 0}
	}
}

// generalizedInverseMass is the XPBD weight w = 1/m + (r × n)ᵀ I⁻¹ (r × n)
func generalizedInverseMass(body *actor.RigidBody, r, n mgl64.Vec3) float64 {
	if !body.IsMovable() {
		return 0
	}

	rCrossN := r.Cross(n)
	return body.InverseMass() + body.GetInverseInertiaWorld().Mul3x1(rCrossN).Dot(rCrossN)
}
