package constraint

import (
	"math"

	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCompliance controls soft constraint stiffness for contact resolution.
	// Lower values = stiffer contacts (less penetration, potential jitter)
	// Higher values = softer contacts (more penetration, smoother)
	// Typical range: 1e-10 (very stiff) to 1e-6 (soft)
	DefaultCompliance = 1e-7
)

type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ContactConstraint pushes BodyB out of BodyA along Normal (pointing from A to B)
type ContactConstraint struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Points []ContactPoint
	Normal mgl64.Vec3
}

// SolvePosition resolves penetration (PBD style, no lambda accumulation)
func (c *ContactConstraint) SolvePosition(dt float64) {
	if len(c.Points) == 0 {
		return
	}
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	unlock := lockMovable(bodyA, bodyB)
	defer unlock()

	// ========== 1. Total effective weight ==========
	var totalWeight float64
	var totalPenetration float64

	for _, point := range c.Points {
		if point.Penetration <= 1e-8 {
			continue
		}

		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		totalWeight += generalizedInverseMass(bodyA, rA, c.Normal) + generalizedInverseMass(bodyB, rB, c.Normal)
		totalPenetration += point.Penetration
	}

	if totalWeight <= 1e-8 {
		return
	}

	// ========== 2. Global correction ==========
	alphaTilde := DefaultCompliance / (dt * dt)
	deltaLambda := -totalPenetration / (totalWeight + alphaTilde)
	totalImpulse := c.Normal.Mul(deltaLambda)

	// ========== 3. Linear and angular corrections ==========
	// The impulse is shared by all points; each point contributes its lever arm
	for _, point := range c.Points {
		if point.Penetration <= 1e-8 {
			continue
		}

		share := point.Penetration / totalPenetration
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		bodyA.ApplyPositionCorrection(totalImpulse.Mul(share), rA)
		bodyB.ApplyPositionCorrection(totalImpulse.Mul(-share), rB)
	}
}

// SolveVelocity applies restitution and friction
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if len(c.Points) == 0 {
		return
	}
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	bodyA := c.BodyA
	bodyB := c.BodyB

	unlock := lockMovable(bodyA, bodyB)
	defer unlock()

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	IA_inv := bodyA.GetInverseInertiaWorld()
	IB_inv := bodyB.GetInverseInertiaWorld()

	restitution := ComputeRestitution(bodyA.Material, bodyB.Material)
	staticFriction := ComputeStaticFriction(bodyA.Material, bodyB.Material)
	dynamicFriction := ComputeDynamicFriction(bodyA.Material, bodyB.Material)

	var totalLinearImpulseA mgl64.Vec3
	var totalLinearImpulseB mgl64.Vec3
	var totalAngularImpulseA mgl64.Vec3
	var totalAngularImpulseB mgl64.Vec3

	for _, point := range c.Points {
		rA := point.Position.Sub(bodyA.Transform.Position)
		rB := point.Position.Sub(bodyB.Transform.Position)

		vA := bodyA.Velocity.Add(bodyA.AngularVelocity.Cross(rA))
		vB := bodyB.Velocity.Add(bodyB.AngularVelocity.Cross(rB))
		relativeVel := vB.Sub(vA)
		normalVel := relativeVel.Dot(c.Normal)

		vAPrev := bodyA.PresolveVelocity.Add(bodyA.PresolveAngularVelocity.Cross(rA))
		vBPrev := bodyB.PresolveVelocity.Add(bodyB.PresolveAngularVelocity.Cross(rB))
		normalVelPrev := vBPrev.Sub(vAPrev).Dot(c.Normal)

		// ========== NORMAL IMPULSE (restitution) ==========
		effectiveMassNormal := generalizedInverseMass(bodyA, rA, c.Normal) + generalizedInverseMass(bodyB, rB, c.Normal)
		if effectiveMassNormal < 1e-10 {
			continue
		}

		targetVel := -restitution * normalVelPrev
		lambdaNormal := (targetVel - normalVel) / effectiveMassNormal

		// Contacts only push
		if lambdaNormal < 0 {
			lambdaNormal = 0
		}

		normalImpulse := c.Normal.Mul(lambdaNormal)

		totalLinearImpulseA = totalLinearImpulseA.Sub(normalImpulse.Mul(invMassA))
		totalLinearImpulseB = totalLinearImpulseB.Add(normalImpulse.Mul(invMassB))
		totalAngularImpulseA = totalAngularImpulseA.Add(IA_inv.Mul3x1(rA.Cross(normalImpulse.Mul(-1))))
		totalAngularImpulseB = totalAngularImpulseB.Add(IB_inv.Mul3x1(rB.Cross(normalImpulse)))

		// ========== TANGENTIAL IMPULSE (friction) ==========
		if lambdaNormal <= 0 {
			continue
		}

		tangentVel := relativeVel.Sub(c.Normal.Mul(normalVel))
		tangentSpeed := tangentVel.Len()
		if tangentSpeed <= 1e-6 {
			continue
		}

		tangentDir := tangentVel.Mul(1.0 / tangentSpeed)
		effectiveMassTangent := generalizedInverseMass(bodyA, rA, tangentDir) + generalizedInverseMass(bodyB, rB, tangentDir)
		if effectiveMassTangent < 1e-10 {
			continue
		}

		lambdaTangent := -tangentSpeed / effectiveMassTangent

		// Coulomb's law: |F_friction| ≤ μ * |F_normal|
		var frictionImpulse mgl64.Vec3
		if math.Abs(lambdaTangent) <= staticFriction*math.Abs(lambdaNormal) {
			frictionImpulse = tangentDir.Mul(lambdaTangent)
		} else {
			frictionImpulse = tangentDir.Mul(-dynamicFriction * math.Abs(lambdaNormal))
		}

		totalLinearImpulseA = totalLinearImpulseA.Sub(frictionImpulse.Mul(invMassA))
		totalLinearImpulseB = totalLinearImpulseB.Add(frictionImpulse.Mul(invMassB))
		totalAngularImpulseA = totalAngularImpulseA.Add(IA_inv.Mul3x1(rA.Cross(frictionImpulse.Mul(-1))))
		totalAngularImpulseB = totalAngularImpulseB.Add(IB_inv.Mul3x1(rB.Cross(frictionImpulse)))
	}

	if bodyA.IsMovable() {
		bodyA.Velocity = bodyA.Velocity.Add(totalLinearImpulseA)
		bodyA.AngularVelocity = bodyA.AngularVelocity.Add(totalAngularImpulseA)
		clampSmallVelocities(bodyA)
	}
	if bodyB.IsMovable() {
		bodyB.Velocity = bodyB.Velocity.Add(totalLinearImpulseB)
		bodyB.AngularVelocity = bodyB.AngularVelocity.Add(totalAngularImpulseB)
		clampSmallVelocities(bodyB)
	}
}

// lockMovable locks the bodies a contact writes to. Static and kinematic bodies
// are only read, so contacts sharing the ground plane run in parallel.
func lockMovable(bodyA, bodyB *actor.RigidBody) (unlock func()) {
	if bodyA.IsMovable() {
		bodyA.Mutex.Lock()
	}
	if bodyB.IsMovable() {
		bodyB.Mutex.Lock()
	}

	return func() {
		if bodyB.IsMovable() {
			bodyB.Mutex.Unlock()
		}
		if bodyA.IsMovable() {
			bodyA.Mutex.Unlock()
		}
	}
}
