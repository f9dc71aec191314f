package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Sphere Tests
// =============================================================================

func TestSphere_ComputeMass(t *testing.T) {
	tests := []struct {
		name    string
		radius  float64
		density float64
	}{
		{"unit sphere", 1.0, 1.0},
		{"chain link", 0.0375, 1.0},
		{"dense", 0.5, 7.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sphere{Radius: tt.radius}
			want := tt.density * 4.0 / 3.0 * math.Pi * tt.radius * tt.radius * tt.radius
			if got := s.ComputeMass(tt.density); !almostEqual(got, want, 1e-12) {
				t.Errorf("ComputeMass() = %v, want %v", got, want)
			}
		})
	}
}

func TestSphere_ComputeInertia(t *testing.T) {
	s := &Sphere{Radius: 0.5}
	mass := 2.0
	inertia := s.ComputeInertia(mass)

	want := 0.4 * mass * 0.25
	for i := 0; i < 3; i++ {
		if !almostEqual(inertia.At(i, i), want, 1e-12) {
			t.Errorf("inertia[%d][%d] = %v, want %v", i, i, inertia.At(i, i), want)
		}
	}
	if inertia.At(0, 1) != 0 || inertia.At(1, 2) != 0 {
		t.Error("sphere inertia must be diagonal")
	}
}

func TestSphere_ComputeAABB(t *testing.T) {
	s := &Sphere{Radius: 2}
	s.ComputeAABB(NewTransformAt(mgl64.Vec3{1, 2, 3}))

	aabb := s.GetAABB()
	if !vec3AlmostEqual(aabb.Min, mgl64.Vec3{-1, 0, 1}, 1e-12) {
		t.Errorf("Min = %v", aabb.Min)
	}
	if !vec3AlmostEqual(aabb.Max, mgl64.Vec3{3, 4, 5}, 1e-12) {
		t.Errorf("Max = %v", aabb.Max)
	}
}

func TestSphere_CollideWithPlane(t *testing.T) {
	s := &Sphere{Radius: 0.5}
	normal := mgl64.Vec3{0, 1, 0}
	point := mgl64.Vec3{0, -1, 0}

	tests := []struct {
		name            string
		center          mgl64.Vec3
		wantCollision   bool
		wantPenetration float64
	}{
		{"above", mgl64.Vec3{0, 0, 0}, false, 0},
		{"resting exactly", mgl64.Vec3{0, -0.5, 0}, false, 0},
		{"sinking", mgl64.Vec3{3, -0.7, 2}, true, 0.2},
		{"center below", mgl64.Vec3{0, -1.25, 0}, true, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, contacts := s.CollideWithPlane(normal, point, NewTransformAt(tt.center))
			if hit != tt.wantCollision {
				t.Fatalf("collision = %v, want %v", hit, tt.wantCollision)
			}
			if !hit {
				return
			}
			if len(contacts) != 1 {
				t.Fatalf("got %d contacts, want 1", len(contacts))
			}
			if !almostEqual(contacts[0].Penetration, tt.wantPenetration, 1e-12) {
				t.Errorf("Penetration = %v, want %v", contacts[0].Penetration, tt.wantPenetration)
			}
			wantPos := tt.center.Sub(normal.Mul(s.Radius))
			if !vec3AlmostEqual(contacts[0].Position, wantPos, 1e-12) {
				t.Errorf("Position = %v, want %v", contacts[0].Position, wantPos)
			}
		})
	}
}

// =============================================================================
// Plane Tests
// =============================================================================

func TestPlane_Origin(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 2}

	got := p.Origin(NewTransformAt(mgl64.Vec3{0, -15.5, 0}))
	if !vec3AlmostEqual(got, mgl64.Vec3{0, -17.5, 0}, 1e-12) {
		t.Errorf("Origin() = %v, want (0,-17.5,0)", got)
	}
}

func TestPlane_ComputeAABB(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}}
	p.ComputeAABB(NewTransformAt(mgl64.Vec3{0, -17.5, 0}))
	aabb := p.GetAABB()

	if !almostEqual(aabb.Max.Y(), -17.5, 1e-12) || !almostEqual(aabb.Min.Y(), -18.5, 1e-12) {
		t.Errorf("vertical extent = [%v, %v], want [-18.5, -17.5]", aabb.Min.Y(), aabb.Max.Y())
	}
	if aabb.Min.X() > -1e9 || aabb.Max.Z() < 1e9 {
		t.Errorf("horizontal extent should be unbounded, got %v", aabb)
	}
}

func TestPlane_IsStatic(t *testing.T) {
	p := &Plane{Normal: mgl64.Vec3{0, 1, 0}}

	if !math.IsInf(p.ComputeMass(1), 1) {
		t.Error("plane mass should be infinite")
	}
	if hit, _ := p.CollideWithPlane(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, NewTransform()); hit {
		t.Error("plane/plane collisions are not reported")
	}
}
