package constraint

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Helper function to create a dynamic sphere for testing
func createDynamicBody(position mgl64.Vec3, velocity mgl64.Vec3, radius float64) *actor.RigidBody {
	rb := actor.NewRigidBody(
		actor.NewTransformAt(position),
		&actor.Sphere{Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)

	rb.Velocity = velocity
	rb.PresolveVelocity = velocity

	return rb
}

// Helper function to create a static ground plane at the given height
func createGround(height float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, height, 0}),
		&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}},
		actor.BodyTypeStatic,
		0.0,
	)
}

func groundContact(ground, body *actor.RigidBody) *ContactConstraint {
	plane := ground.Shape.(*actor.Plane)
	hit, points := body.Shape.CollideWithPlane(plane.Normal, plane.Origin(ground.Transform), body.Transform)
	if !hit {
		return &ContactConstraint{BodyA: ground, BodyB: body, Normal: plane.Normal}
	}

	contact := &ContactConstraint{BodyA: ground, BodyB: body, Normal: plane.Normal}
	for _, p := range points {
		contact.Points = append(contact.Points, ContactPoint{Position: p.Position, Penetration: p.Penetration})
	}

	return contact
}

func TestContactConstraint_SolvePosition_NoPenetration(t *testing.T) {
	ground := createGround(0)
	body := createDynamicBody(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 0.5)

	contact := groundContact(ground, body)
	contact.SolvePosition(1.0 / 60.0)

	if body.Transform.Position != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("body moved without penetration: %v", body.Transform.Position)
	}
}

func TestContactConstraint_SolvePosition_PushesOut(t *testing.T) {
	ground := createGround(0)
	body := createDynamicBody(mgl64.Vec3{0, 0.3, 0}, mgl64.Vec3{}, 0.5)

	contact := groundContact(ground, body)
	if len(contact.Points) != 1 {
		t.Fatalf("expected one contact point, got %d", len(contact.Points))
	}

	contact.SolvePosition(1.0 / 60.0)

	if math.Abs(body.Transform.Position.Y()-0.5) > 1e-3 {
		t.Errorf("body Y = %v, want ~0.5 (resting on the ground)", body.Transform.Position.Y())
	}
	if ground.Transform.Position != (mgl64.Vec3{}) {
		t.Errorf("static ground moved to %v", ground.Transform.Position)
	}
}

func TestContactConstraint_SolvePosition_KinematicIgnored(t *testing.T) {
	ground := createGround(0)
	head := actor.NewRigidBody(actor.NewTransformAt(mgl64.Vec3{0, 0.1, 0}), &actor.Sphere{Radius: 0.5}, actor.BodyTypeKinematic, 1.0)

	contact := groundContact(ground, head)
	contact.SolvePosition(1.0 / 60.0)
	contact.SolveVelocity(1.0 / 60.0)

	if head.Transform.Position != (mgl64.Vec3{0, 0.1, 0}) {
		t.Errorf("kinematic body pushed to %v", head.Transform.Position)
	}
}

func TestContactConstraint_SolveVelocity_StopsApproach(t *testing.T) {
	ground := createGround(0)
	body := createDynamicBody(mgl64.Vec3{0, 0.45, 0}, mgl64.Vec3{0, -2, 0}, 0.5)

	contact := groundContact(ground, body)
	contact.SolveVelocity(1.0 / 60.0)

	if math.Abs(body.Velocity.Y()) > 1e-9 {
		t.Errorf("velocity Y = %v, want 0 without restitution", body.Velocity.Y())
	}
}

func TestContactConstraint_SolveVelocity_Restitution(t *testing.T) {
	ground := createGround(0)
	ground.Material.Restitution = 1.0
	body := createDynamicBody(mgl64.Vec3{0, 0.45, 0}, mgl64.Vec3{0, -2, 0}, 0.5)
	body.Material.Restitution = 1.0

	contact := groundContact(ground, body)
	contact.SolveVelocity(1.0 / 60.0)

	if math.Abs(body.Velocity.Y()-2.0) > 1e-9 {
		t.Errorf("velocity Y = %v, want 2 with perfect restitution", body.Velocity.Y())
	}
}

func TestContactConstraint_SolveVelocity_SeparatingUntouched(t *testing.T) {
	ground := createGround(0)
	body := createDynamicBody(mgl64.Vec3{0, 0.45, 0}, mgl64.Vec3{0, 3, 0}, 0.5)

	contact := groundContact(ground, body)
	contact.SolveVelocity(1.0 / 60.0)

	if math.Abs(body.Velocity.Y()-3) > 1e-12 {
		t.Errorf("velocity Y = %v, want 3 (contacts never pull)", body.Velocity.Y())
	}
}

func TestContactConstraint_SolveVelocity_Friction(t *testing.T) {
	ground := createGround(0)
	ground.Material.StaticFriction = 1.0
	ground.Material.DynamicFriction = 1.0
	body := createDynamicBody(mgl64.Vec3{0, 0.45, 0}, mgl64.Vec3{0.5, -2, 0}, 0.5)
	body.Material.StaticFriction = 1.0
	body.Material.DynamicFriction = 1.0

	contact := groundContact(ground, body)
	contact.SolveVelocity(1.0 / 60.0)

	if body.Velocity.X() >= 0.5 {
		t.Errorf("friction should slow the tangential velocity, got %v", body.Velocity.X())
	}
}

func TestContactConstraint_BothSleeping(t *testing.T) {
	ground := createGround(0)
	ground.IsSleeping = true
	body := createDynamicBody(mgl64.Vec3{0, 0.3, 0}, mgl64.Vec3{}, 0.5)
	body.Sleep()

	contact := groundContact(ground, body)
	contact.SolvePosition(1.0 / 60.0)

	if body.Transform.Position != (mgl64.Vec3{0, 0.3, 0}) {
		t.Errorf("sleeping pair should not be solved, body at %v", body.Transform.Position)
	}
}

func TestContactConstraint_SharedGroundSolvesConcurrently(t *testing.T) {
	ground := createGround(0)
	var contacts []*ContactConstraint
	for i := 0; i < 8; i++ {
		body := createDynamicBody(mgl64.Vec3{float64(i) * 2, 0.3, 0}, mgl64.Vec3{0, -1, 0}, 0.5)
		contacts = append(contacts, groundContact(ground, body))
	}

	// The ground is only read: contacts must not wait on its mutex
	ground.Mutex.Lock()
	defer ground.Mutex.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, contact := range contacts {
			contact := contact
			wg.Add(1)
			go func() {
				defer wg.Done()
				contact.SolvePosition(1.0 / 60.0)
				contact.SolveVelocity(1.0 / 60.0)
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("contacts blocked on the static ground")
	}

	for i, contact := range contacts {
		if contact.BodyB.Transform.Position.Y() <= 0.3 {
			t.Errorf("contact %d: body not pushed out, y = %v", i, contact.BodyB.Transform.Position.Y())
		}
	}
}
