// Package scene assembles a world from a config: the ground, the chain and its controller.
package scene

import (
	"fmt"
	"log"

	"github.com/akmonengine/tether"
	"github.com/akmonengine/tether/actor"
	"github.com/akmonengine/tether/chain"
	"github.com/akmonengine/tether/config"
	"github.com/akmonengine/tether/constraint"
	"github.com/akmonengine/tether/control"
	"github.com/go-gl/mathgl/mgl64"
)

type Scene struct {
	World  *tether.World
	Chain  *chain.Chain
	Config *config.Config
	// Bodies maps each chain element to its world body, in chain order
	Bodies []tether.BodyID
	Ground tether.BodyID

	hasGround bool
}

// Assemble builds a ready to step scene. src feeds the head controller and may be nil.
func Assemble(cfg *config.Config, src control.Source, logger *log.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := chain.Build(chain.Params{
		Origin:     cfg.Chain.Origin,
		Direction:  cfg.Chain.Direction,
		Count:      cfg.Chain.Count,
		Spacing:    cfg.Chain.Spacing,
		NodeSize:   cfg.Chain.NodeSize,
		Compliance: cfg.Chain.Compliance,
		MoveSpeed:  cfg.Chain.MoveSpeed,
	})
	if err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}

	world := tether.NewWorld(cfg.World.Gravity)
	world.Substeps = cfg.World.Substeps
	world.Workers = cfg.World.Workers
	world.SleepTime = cfg.World.SleepTime
	world.SleepVelocity = cfg.World.SleepVelocity

	s := &Scene{
		World:  world,
		Chain:  c,
		Config: cfg,
		Ground: -1,
	}

	if cfg.Ground.Enabled {
		ground := actor.NewRigidBody(
			actor.NewTransformAt(mgl64.Vec3{0, cfg.Ground.Height, 0}),
			&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}},
			actor.BodyTypeStatic,
			0,
		)
		ground.Material.Restitution = cfg.Ground.Restitution
		ground.Material.StaticFriction = cfg.Ground.StaticFriction
		ground.Material.DynamicFriction = cfg.Ground.DynamicFriction
		s.Ground = world.AddBody(ground)
		s.hasGround = true
	}

	sink := &worldSink{
		world:           world,
		staticFriction:  cfg.Ground.StaticFriction,
		dynamicFriction: cfg.Ground.DynamicFriction,
	}
	handles, err := chain.Spawn(c, sink)
	if err != nil {
		return nil, fmt.Errorf("spawn chain: %w", err)
	}
	s.Bodies = make([]tether.BodyID, len(handles))
	for i, handle := range handles {
		s.Bodies[i] = tether.BodyID(handle)
	}

	// A source driven by the world clock has to see the tick before the driver reads it
	if system, ok := src.(tether.System); ok {
		world.AddSystem(system)
	}
	world.AddSystem(&control.Driver{Source: src})

	if logger != nil {
		logger.Printf("scene: %d bodies, %d joints, ground=%t, substeps=%d", len(c.Bodies), len(c.Joints), s.hasGround, world.Substeps)
	}

	return s, nil
}

// Head returns the controlled body
func (s *Scene) Head() *actor.RigidBody {
	return s.World.Body(s.Bodies[s.Chain.Head])
}

// Tail returns the last body of the chain
func (s *Scene) Tail() *actor.RigidBody {
	return s.World.Body(s.Bodies[s.Chain.Tail()])
}

// HasGround reports whether a ground plane was added
func (s *Scene) HasGround() bool {
	return s.hasGround
}

// Step advances the world by the configured time step
func (s *Scene) Step() {
	s.World.Step(s.Config.World.Dt)
}

// Length is the distance between head and tail following the chain
func (s *Scene) Length() float64 {
	var length float64
	for i := 1; i < len(s.Bodies); i++ {
		a := s.World.Body(s.Bodies[i-1]).Transform.Position
		b := s.World.Body(s.Bodies[i]).Transform.Position
		length += b.Sub(a).Len()
	}
	return length
}

// worldSink turns chain descriptors into world bodies and joints.
// Links get the ground's friction so that the combined coefficient is the configured one.
type worldSink struct {
	world           *tether.World
	staticFriction  float64
	dynamicFriction float64
}

func (ws *worldSink) AddBody(desc chain.BodyDescriptor) chain.Handle {
	shape := &actor.Sphere{Radius: desc.Radius}
	transform := actor.NewTransformAt(desc.Position)

	var body *actor.RigidBody
	if desc.Kind == actor.BodyTypeDynamic {
		body = actor.NewRigidBodyWithMass(transform, shape, desc.Mass, desc.Inertia)
	} else {
		body = actor.NewRigidBody(transform, shape, desc.Kind, 0)
	}
	body.Scale = desc.Scale
	body.Role = desc.Role
	body.Material.StaticFriction = ws.staticFriction
	body.Material.DynamicFriction = ws.dynamicFriction

	return chain.Handle(ws.world.AddBody(body))
}

func (ws *worldSink) AddJoint(bodyA, bodyB chain.Handle, desc chain.JointDescriptor) {
	joint := constraint.NewSphericalJoint(
		ws.world.Body(tether.BodyID(bodyA)),
		ws.world.Body(tether.BodyID(bodyB)),
		desc.Compliance,
	).WithLocalAnchorA(desc.LocalAnchorA).WithLocalAnchorB(desc.LocalAnchorB)

	ws.world.AddJoint(joint)
}
