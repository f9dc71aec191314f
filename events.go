package tether

import (
	"github.com/akmonengine/tether/actor"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_EXIT
	ON_SLEEP
	ON_WAKE
)

type pairKey struct {
	bodyA BodyID
	bodyB BodyID
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB BodyID) pairKey {
	if bodyB < bodyA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ContactEnterEvent is sent on the step a body starts touching a ground plane
type ContactEnterEvent struct {
	BodyA BodyID
	BodyB BodyID
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }

// ContactExitEvent is sent on the step a body stops touching a ground plane
type ContactExitEvent struct {
	BodyA BodyID
	BodyB BodyID
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body BodyID
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body BodyID
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events collects contact and sleep transitions during a step and
// dispatches them to listeners once the step is over
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Contact tracking for Enter/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool

	sleepStates map[BodyID]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
		sleepStates:         make(map[BodyID]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts is called during substeps, a pair touching in any substep is active for the step
func (e *Events) recordContacts(pairs []pairKey) {
	for _, pair := range pairs {
		e.currentActivePairs[pair] = true
	}
}

// processContactEvents compares current and previous pairs to detect Enter/Exit
// Should be called after all substeps
func (e *Events) processContactEvents() {
	for pair := range e.currentActivePairs {
		if !e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, ContactEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, ContactExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for i, body := range bodies {
		id := BodyID(i)
		trackedState, exists := e.sleepStates[id]
		if !exists {
			e.sleepStates[id] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: id})
			e.sleepStates[id] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: id})
			e.sleepStates[id] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processContactEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
