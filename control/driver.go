package control

import (
	"github.com/akmonengine/tether"
)

// Driver is the per-tick system steering every player controlled body of a world
type Driver struct {
	Source Source
}

// Update snapshots the input once and applies Tick to each controlled body
func (d *Driver) Update(w *tether.World, dt float64) {
	in := Snapshot(d.Source)

	for _, body := range w.Bodies {
		if !body.Role.IsPlayerControlled() {
			continue
		}

		body.Velocity = Tick(body.Velocity, body.Role.MoveSpeed, in)
		if in.Any() {
			body.Awake()
		}
	}
}
