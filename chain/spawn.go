package chain

import "fmt"

// Handle is the identifier a Sink hands back for a registered body
type Handle int

// Sink registers chain elements with a solver
type Sink interface {
	AddBody(body BodyDescriptor) Handle
	AddJoint(bodyA, bodyB Handle, joint JointDescriptor)
}

// Spawn registers every body, then every joint, and returns the handle of each
// body in chain order. A chain with dangling joint references is rejected
// before anything reaches the sink.
func Spawn(c *Chain, sink Sink) ([]Handle, error) {
	for i, joint := range c.Joints {
		if joint.BodyA < 0 || joint.BodyA >= len(c.Bodies) || joint.BodyB < 0 || joint.BodyB >= len(c.Bodies) {
			return nil, fmt.Errorf("joint %d references bodies %d and %d out of %d", i, joint.BodyA, joint.BodyB, len(c.Bodies))
		}
	}

	handles := make([]Handle, len(c.Bodies))
	for i, body := range c.Bodies {
		handles[i] = sink.AddBody(body)
	}

	for _, joint := range c.Joints {
		sink.AddJoint(handles[joint.BodyA], handles[joint.BodyB], joint)
	}

	return handles, nil
}
