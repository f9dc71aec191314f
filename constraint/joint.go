package constraint

import (
	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SphericalJoint pins a point of BodyA to a point of BodyB, leaving rotation free.
// Anchors are expressed in each body's local frame.
type SphericalJoint struct {
	BodyA        *actor.RigidBody
	BodyB        *actor.RigidBody
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3
	// Compliance is the inverse stiffness (m/N), 0 is rigid
	Compliance float64
}

func NewSphericalJoint(bodyA, bodyB *actor.RigidBody, compliance float64) *SphericalJoint {
	return &SphericalJoint{
		BodyA:      bodyA,
		BodyB:      bodyB,
		Compliance: compliance,
	}
}

func (j *SphericalJoint) WithLocalAnchorA(anchor mgl64.Vec3) *SphericalJoint {
	j.LocalAnchorA = anchor
	return j
}

func (j *SphericalJoint) WithLocalAnchorB(anchor mgl64.Vec3) *SphericalJoint {
	j.LocalAnchorB = anchor
	return j
}

// WorldAnchors returns both anchors in world space
func (j *SphericalJoint) WorldAnchors() (mgl64.Vec3, mgl64.Vec3) {
	return j.BodyA.Transform.LocalToWorld(j.LocalAnchorA), j.BodyB.Transform.LocalToWorld(j.LocalAnchorB)
}

// Separation is the distance between both world anchors, 0 when satisfied
func (j *SphericalJoint) Separation() float64 {
	anchorA, anchorB := j.WorldAnchors()
	return anchorB.Sub(anchorA).Len()
}

// SolvePosition moves both anchors toward each other (XPBD, single iteration per substep)
func (j *SphericalJoint) SolvePosition(dt float64) {
	bodyA := j.BodyA
	bodyB := j.BodyB
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return
	}

	anchorA, anchorB := j.WorldAnchors()
	delta := anchorB.Sub(anchorA)
	separation := delta.Len()
	if separation <= 1e-12 {
		return
	}
	normal := delta.Mul(1.0 / separation)

	rA := anchorA.Sub(bodyA.Transform.Position)
	rB := anchorB.Sub(bodyB.Transform.Position)

	wA := generalizedInverseMass(bodyA, rA, normal)
	wB := generalizedInverseMass(bodyB, rB, normal)
	alphaTilde := j.Compliance / (dt * dt)
	if wA+wB+alphaTilde <= 1e-12 {
		return
	}

	// A sleeping body dragged by its neighbour has to follow
	if bodyA.IsSleeping && bodyA.IsMovable() {
		bodyA.Awake()
	}
	if bodyB.IsSleeping && bodyB.IsMovable() {
		bodyB.Awake()
	}

	deltaLambda := -separation / (wA + wB + alphaTilde)
	impulse := normal.Mul(deltaLambda)

	bodyA.ApplyPositionCorrection(impulse.Mul(-1), rA)
	bodyB.ApplyPositionCorrection(impulse, rB)
}

// SolveVelocity is a no-op: the joint has no restitution or friction
func (j *SphericalJoint) SolveVelocity(dt float64) {}
