package tether

import (
	"github.com/akmonengine/tether/actor"
	"github.com/akmonengine/tether/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_WORKERS  = 1
	DEFAULT_SUBSTEPS = 50

	DEFAULT_SLEEP_TIME     = 0.1
	DEFAULT_SLEEP_VELOCITY = 0.05
)

// System is a per-tick callback run by World.Step before the solver substeps
type System interface {
	Update(w *World, dt float64)
}

// SystemFunc adapts a function to the System interface
type SystemFunc func(w *World, dt float64)

func (f SystemFunc) Update(w *World, dt float64) {
	f(w, dt)
}

type World struct {
	// List of all rigid bodies in the world, indexed by BodyID
	Bodies []*actor.RigidBody
	// Joints are solved in insertion order
	Joints []constraint.Constraint
	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	// Systems run in order at the start of every Step
	Systems []System

	// A dynamic body slower than SleepVelocity for SleepTime seconds falls asleep
	SleepTime     float64
	SleepVelocity float64

	Events Events

	tick uint64
}

// BodyID identifies a body by its index in World.Bodies
type BodyID int

// NewWorld creates a world with the default substeps, workers and sleep thresholds
func NewWorld(gravity mgl64.Vec3) *World {
	return &World{
		Gravity:       gravity,
		Substeps:      DEFAULT_SUBSTEPS,
		Workers:       DEFAULT_WORKERS,
		SleepTime:     DEFAULT_SLEEP_TIME,
		SleepVelocity: DEFAULT_SLEEP_VELOCITY,
		Events:        NewEvents(),
	}
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) BodyID {
	w.Bodies = append(w.Bodies, body)
	return BodyID(len(w.Bodies) - 1)
}

// Body returns the body registered under id, nil if unknown
func (w *World) Body(id BodyID) *actor.RigidBody {
	if id < 0 || int(id) >= len(w.Bodies) {
		return nil
	}
	return w.Bodies[id]
}

// AddJoint adds a constraint solved every substep
func (w *World) AddJoint(joint constraint.Constraint) {
	w.Joints = append(w.Joints, joint)
}

// AddSystem appends a per-tick system, systems run in the order they were added
func (w *World) AddSystem(system System) {
	w.Systems = append(w.Systems, system)
}

// Tick returns the number of completed steps
func (w *World) Tick() uint64 {
	return w.tick
}

func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	if w.Events.listeners == nil {
		w.Events = NewEvents()
	}
	h := dt / float64(w.Substeps)

	// Phase 0: per-tick systems (input, scripted motion)
	for _, system := range w.Systems {
		system.Update(w, dt)
	}

	for i := 0; i < w.Substeps; i++ {
		// Phase 1: Integrate
		w.integrate(h)

		// Phase 2: Ground contacts
		contacts, pairs := w.detectGroundContacts()
		w.Events.recordContacts(pairs)

		// Phase 3: Solver, only one iteration is required thanks to substeps
		w.solvePosition(h, contacts)

		// Phase 4: Update Position & Velocity
		w.update(h)

		// Phase 5: Velocity
		w.solveVelocity(h, contacts)

		w.trySleep(h)
	}

	w.tick++
	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

// solvePosition runs joints sequentially, neighbouring joints share bodies
func (w *World) solvePosition(h float64, contacts []*constraint.ContactConstraint) {
	for _, joint := range w.Joints {
		joint.SolvePosition(h)
	}

	task(w.Workers, contacts, func(contact *constraint.ContactConstraint) {
		contact.SolvePosition(h)
	})
}

func (w *World) update(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

func (w *World) solveVelocity(h float64, contacts []*constraint.ContactConstraint) {
	for _, joint := range w.Joints {
		joint.SolveVelocity(h)
	}

	task(w.Workers, contacts, func(contact *constraint.ContactConstraint) {
		contact.SolveVelocity(h)
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	if w.SleepTime <= 0 {
		return
	}

	for _, body := range w.Bodies {
		body.TrySleep(h, w.SleepTime, w.SleepVelocity)
	}
}
