package tether

import (
	"testing"

	"github.com/akmonengine/tether/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// createTestBody creates a minimal dynamic body for event testing
func createTestBody(isSleeping bool) *actor.RigidBody {
	rb := actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Sphere{Radius: 1.0},
		actor.BodyTypeDynamic,
		1.0,
	)
	rb.IsSleeping = isSleeping
	return rb
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) hasEventType(eventType EventType) bool {
	for _, e := range ec.events {
		if e.Type() == eventType {
			return true
		}
	}
	return false
}

// =============================================================================
// Subscribe and Listeners Tests
// =============================================================================

func TestEvents_Subscribe(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}

	events.Subscribe(CONTACT_ENTER, capture.capture)

	if len(events.listeners[CONTACT_ENTER]) != 1 {
		t.Errorf("Expected 1 listener for CONTACT_ENTER, got %d", len(events.listeners[CONTACT_ENTER]))
	}
}

func TestEvents_MultipleListeners(t *testing.T) {
	events := NewEvents()
	first := &eventCapture{}
	second := &eventCapture{}

	events.Subscribe(CONTACT_ENTER, first.capture)
	events.Subscribe(CONTACT_ENTER, second.capture)

	events.recordContacts([]pairKey{makePairKey(0, 1)})
	events.flush()

	if first.count() != 1 || second.count() != 1 {
		t.Errorf("Expected both listeners to receive 1 event, got %d and %d", first.count(), second.count())
	}
}

func TestEvents_OnlySubscribedTypes(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)

	events.recordContacts([]pairKey{makePairKey(0, 1)})
	events.flush()

	if capture.count() != 0 {
		t.Errorf("Expected no events for an unsubscribed type, got %d", capture.count())
	}
}

// =============================================================================
// Pair Key Tests
// =============================================================================

func TestMakePairKey_Normalization(t *testing.T) {
	if makePairKey(3, 1) != makePairKey(1, 3) {
		t.Error("makePairKey should not depend on argument order")
	}

	key := makePairKey(5, 2)
	if key.bodyA != 2 || key.bodyB != 5 {
		t.Errorf("Expected (2, 5), got (%d, %d)", key.bodyA, key.bodyB)
	}
}

func TestMakePairKey_DifferentPairs(t *testing.T) {
	if makePairKey(0, 1) == makePairKey(0, 2) {
		t.Error("Different pairs must produce different keys")
	}
}

// =============================================================================
// Contact Tests
// =============================================================================

func TestEvents_ContactEnter(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(CONTACT_ENTER, capture.capture)

	events.recordContacts([]pairKey{makePairKey(0, 4)})
	events.flush()

	if capture.count() != 1 {
		t.Fatalf("Expected 1 CONTACT_ENTER event, got %d", capture.count())
	}
	event := capture.events[0].(ContactEnterEvent)
	if event.BodyA != 0 || event.BodyB != 4 {
		t.Errorf("Expected pair (0, 4), got (%d, %d)", event.BodyA, event.BodyB)
	}
}

func TestEvents_ContactStay_NoRepeatedEnter(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(CONTACT_ENTER, capture.capture)

	for i := 0; i < 3; i++ {
		events.recordContacts([]pairKey{makePairKey(0, 1)})
		events.flush()
	}

	if capture.count() != 1 {
		t.Errorf("Expected a single CONTACT_ENTER over 3 steps, got %d", capture.count())
	}
}

func TestEvents_ContactRecordedInSeveralSubsteps(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(CONTACT_ENTER, capture.capture)

	events.recordContacts([]pairKey{makePairKey(0, 1)})
	events.recordContacts([]pairKey{makePairKey(1, 0)})
	events.flush()

	if capture.count() != 1 {
		t.Errorf("Expected 1 CONTACT_ENTER, got %d", capture.count())
	}
}

func TestEvents_ContactExit(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(CONTACT_EXIT, capture.capture)

	events.recordContacts([]pairKey{makePairKey(0, 1)})
	events.flush()

	if capture.count() != 0 {
		t.Fatalf("Expected no CONTACT_EXIT while touching, got %d", capture.count())
	}

	// Next step without contact
	events.flush()

	if !capture.hasEventType(CONTACT_EXIT) {
		t.Fatal("Expected CONTACT_EXIT event")
	}
	event := capture.events[0].(ContactExitEvent)
	if event.BodyA != 0 || event.BodyB != 1 {
		t.Errorf("Expected pair (0, 1), got (%d, %d)", event.BodyA, event.BodyB)
	}

	capture.reset()
	events.flush()
	if capture.count() != 0 {
		t.Errorf("Expected a single CONTACT_EXIT, got %d more", capture.count())
	}
}

// =============================================================================
// Sleep/Wake Tests
// =============================================================================

func TestEvents_OnSleep(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)

	body := createTestBody(false)
	bodies := []*actor.RigidBody{createTestBody(false), body}

	// Frame 1: initialize state
	events.processSleepEvents(bodies)
	events.flush()

	if capture.count() != 0 {
		t.Errorf("Expected no events on initialization, got %d", capture.count())
	}

	// Frame 2: body goes to sleep
	body.IsSleeping = true
	events.processSleepEvents(bodies)
	events.flush()

	if capture.count() != 1 {
		t.Fatalf("Expected 1 event, got %d", capture.count())
	}
	event := capture.events[0].(SleepEvent)
	if event.Body != 1 {
		t.Errorf("Expected SleepEvent for body 1, got %d", event.Body)
	}
}

func TestEvents_OnWake(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_WAKE, capture.capture)

	body := createTestBody(true)
	bodies := []*actor.RigidBody{body}

	events.processSleepEvents(bodies)
	events.flush()

	body.IsSleeping = false
	events.processSleepEvents(bodies)
	events.flush()

	if capture.count() != 1 {
		t.Fatalf("Expected 1 event, got %d", capture.count())
	}
	if capture.events[0].(WakeEvent).Body != 0 {
		t.Error("WakeEvent should reference body 0")
	}
}

func TestEvents_NoSleepEvent_AlreadySleeping(t *testing.T) {
	events := NewEvents()
	capture := &eventCapture{}
	events.Subscribe(ON_SLEEP, capture.capture)
	events.Subscribe(ON_WAKE, capture.capture)

	bodies := []*actor.RigidBody{createTestBody(true)}

	for i := 0; i < 3; i++ {
		events.processSleepEvents(bodies)
		events.flush()
	}

	if capture.count() != 0 {
		t.Errorf("Expected no events for a body that stays asleep, got %d", capture.count())
	}
}

// =============================================================================
// World Integration
// =============================================================================

func TestEvents_WorldGroundContact(t *testing.T) {
	world := NewWorld(mgl64.Vec3{0, -9.81, 0})
	world.SleepTime = 0

	enter := &eventCapture{}
	world.Events.Subscribe(CONTACT_ENTER, enter.capture)

	ground := world.AddBody(actor.NewRigidBody(
		actor.NewTransform(),
		&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}},
		actor.BodyTypeStatic,
		0,
	))
	ball := world.AddBody(actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, 0.6, 0}),
		&actor.Sphere{Radius: 0.5},
		actor.BodyTypeDynamic,
		1.0,
	))

	for i := 0; i < 60; i++ {
		world.Step(1.0 / 60.0)
	}

	if enter.count() != 1 {
		t.Fatalf("Expected exactly 1 CONTACT_ENTER, got %d", enter.count())
	}
	event := enter.events[0].(ContactEnterEvent)
	if event.BodyA != ground || event.BodyB != ball {
		t.Errorf("Expected pair (%d, %d), got (%d, %d)", ground, ball, event.BodyA, event.BodyB)
	}
}
