package actor

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and constraints
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies move with the velocity they are given
	// Forces, gravity and constraints never push them
	BodyTypeKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	case BodyTypeKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// RoleKind discriminates what drives a body besides the solver
type RoleKind uint8

const (
	RoleNone RoleKind = iota
	// RolePlayerControlled bodies have their linear velocity set by player input
	RolePlayerControlled
)

// Role tags a body with the behavior attached to it
// MoveSpeed is only meaningful for RolePlayerControlled
type Role struct {
	Kind      RoleKind
	MoveSpeed float64
}

// PlayerControlled returns a role driven by input at the given speed
func PlayerControlled(moveSpeed float64) Role {
	return Role{Kind: RolePlayerControlled, MoveSpeed: moveSpeed}
}

func (r Role) IsPlayerControlled() bool {
	return r.Kind == RolePlayerControlled
}

type Material struct {
	Density     float64
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution

	StaticFriction  float64
	DynamicFriction float64
	LinearDamping   float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping  float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	// Linear motion
	PresolveVelocity mgl64.Vec3
	Velocity         mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	PresolveAngularVelocity mgl64.Vec3
	AngularVelocity         mgl64.Vec3 // rad/s
	InertiaLocal            mgl64.Mat3
	InverseInertiaLocal     mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64

	// Physical properties
	Material Material
	BodyType BodyType
	Role     Role

	// Visual scale, independent of the collision shape
	Scale float64

	// Collision shape
	Shape ShapeInterface

	Mutex sync.Mutex
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static and kinematic)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.InverseRotation = transform.Rotation.Inverse()

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
		Velocity:          mgl64.Vec3{0, 0, 0},
		Scale:             1.0,
	}

	if bodyType == BodyTypeDynamic {
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
		rb.InertiaLocal = shape.ComputeInertia(rb.Material.mass)
		rb.InverseInertiaLocal = invertInertia(rb.InertiaLocal)
	} else {
		// Static and kinematic bodies behave as infinitely heavy for the solver
		rb.Material = Material{
			Density: 0,
			mass:    math.Inf(1),
		}
	}

	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// NewRigidBodyWithMass creates a dynamic body whose mass and inertia are already known
func NewRigidBodyWithMass(transform Transform, shape ShapeInterface, mass float64, inertia mgl64.Mat3) *RigidBody {
	rb := NewRigidBody(transform, shape, BodyTypeDynamic, 0)
	rb.Material.mass = mass
	rb.InertiaLocal = inertia
	rb.InverseInertiaLocal = invertInertia(inertia)

	return rb
}

// invertInertia inverts an inertia tensor of any magnitude.
// Mat3.Inv returns zero below a 1e-20 determinant, small spheres go under it.
func invertInertia(inertia mgl64.Mat3) mgl64.Mat3 {
	if inertia == mgl64.Diag3(inertia.Diag()) {
		var inverse mgl64.Mat3
		for i := 0; i < 3; i++ {
			if d := inertia.At(i, i); d != 0 {
				inverse.Set(i, i, 1.0/d)
			}
		}
		return inverse
	}

	scale := 0.0
	for _, v := range inertia {
		scale = max(scale, math.Abs(v))
	}
	if scale == 0 {
		return mgl64.Mat3{}
	}

	// (I/s)⁻¹ = s·I⁻¹
	return inertia.Mul(1.0 / scale).Inv().Mul(1.0 / scale)
}

// InverseMass is zero for bodies that the solver must not move
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic || rb.Material.mass <= 0 || math.IsInf(rb.Material.mass, 1) {
		return 0
	}

	return 1.0 / rb.Material.mass
}

// IsMovable reports whether constraint corrections apply to the body
func (rb *RigidBody) IsMovable() bool {
	return rb.BodyType == BodyTypeDynamic
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.PreviousTransform = rb.Transform
	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	if rb.BodyType == BodyTypeKinematic {
		rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))
		rb.integrateRotation(dt)
		rb.PresolveVelocity = rb.Velocity
		rb.PresolveAngularVelocity = rb.AngularVelocity
		rb.Shape.ComputeAABB(rb.Transform)
		rb.ClearForces()
		return
	}

	// ========== LINEAR ==========
	invMass := rb.InverseMass()
	rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
	rb.Velocity = rb.Velocity.Add(rb.accumulatedForce.Mul(invMass * dt))

	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// ========== ANGULAR ==========
	angularAccel := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAccel.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	rb.integrateRotation(dt)

	rb.PresolveVelocity = rb.Velocity
	rb.PresolveAngularVelocity = rb.AngularVelocity

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

func (rb *RigidBody) integrateRotation(dt float64) {
	if rb.AngularVelocity.Len() == 0 {
		return
	}

	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.Rotation = rb.Transform.Rotation.Add(qDot.Scale(dt)).Normalize()
	rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
}

// Update derives velocities from the positional change of the substep
func (rb *RigidBody) Update(dt float64) {
	if rb.BodyType != BodyTypeDynamic || rb.IsSleeping {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate())
	qDelta = qDelta.Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}
}

// ApplyPositionCorrection moves the body by a positional impulse applied at the
// world-space lever arm r, as computed by a position based constraint
func (rb *RigidBody) ApplyPositionCorrection(impulse, r mgl64.Vec3) {
	if !rb.IsMovable() {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(impulse.Mul(rb.InverseMass()))

	deltaRot := rb.GetInverseInertiaWorld().Mul3x1(r.Cross(impulse))
	if deltaRot.Len() > 1e-12 {
		// For a small angle δθ, q_delta ≈ [1, δθ/2]
		qDelta := mgl64.Quat{W: 1.0, V: deltaRot.Mul(0.5)}.Normalize()
		rb.Transform.Rotation = qDelta.Mul(rb.Transform.Rotation).Normalize()
		rb.Transform.InverseRotation = rb.Transform.Rotation.Inverse()
	}
}

// AddForce in N (kg⋅m/s²)
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()

		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddTorque in N⋅m
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()

		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// GetInertiaWorld returns the inertia tensor in world space
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns the inverse inertia tensor in world space
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType != BodyTypeDynamic {
		return mgl64.Mat3{0, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}
