package main

import (
	"fmt"
	"log"
	"os"

	"github.com/akmonengine/tether"
	"github.com/akmonengine/tether/config"
	"github.com/akmonengine/tether/input"
	"github.com/akmonengine/tether/scene"
)

// Two spheres three meters apart: the head is pushed left for half a second,
// then the bob swings under it until it settles.
func main() {
	logger := log.New(os.Stdout, "", 0)

	cfg := config.GetPreset("pendulum")
	cfg.Ground.Enabled = false
	cfg.Script = []config.SegmentConfig{
		{From: 0, To: 30, Signals: []string{"left"}},
	}

	script, err := input.NewScript(cfg.Script)
	if err != nil {
		logger.Fatal(err)
	}
	s, err := scene.Assemble(cfg, script, logger)
	if err != nil {
		logger.Fatal(err)
	}

	s.World.Events.Subscribe(tether.ON_SLEEP, func(event tether.Event) {
		logger.Printf("tick %d: body %d is asleep", s.World.Tick(), event.(tether.SleepEvent).Body)
	})

	fmt.Printf("head %v, bob %v\n", s.Head().Transform.Position, s.Tail().Transform.Position)

	const maxSteps = 600
	for step := 1; step <= maxSteps; step++ {
		s.Step()

		if step%30 == 0 {
			head := s.Head()
			bob := s.Tail()
			fmt.Printf("%4d  head x=%6.3f vx=%6.3f  bob (%6.3f, %6.3f, %6.3f)  |head-bob|=%.3f\n",
				step,
				head.Transform.Position.X(), head.Velocity.X(),
				bob.Transform.Position.X(), bob.Transform.Position.Y(), bob.Transform.Position.Z(),
				bob.Transform.Position.Sub(head.Transform.Position).Len(),
			)
		}
	}
}
