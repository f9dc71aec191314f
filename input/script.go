package input

import (
	"fmt"

	"github.com/akmonengine/tether"
	"github.com/akmonengine/tether/config"
	"github.com/akmonengine/tether/control"
)

// Segment presses Signals from tick From (included) to tick To (excluded)
type Segment struct {
	From    uint64
	To      uint64
	Signals []control.Signal
}

func (s Segment) active(tick uint64) bool {
	return tick >= s.From && tick < s.To
}

// Script replays timed input against the world tick.
// It is a System so that it reads the tick before the driver snapshots it.
type Script struct {
	Segments []Segment
	tick     uint64
}

// NewScript converts configured segments, signal names must be known
func NewScript(segments []config.SegmentConfig) (*Script, error) {
	script := &Script{Segments: make([]Segment, 0, len(segments))}

	for i, segment := range segments {
		if segment.From < 0 || segment.To < segment.From {
			return nil, fmt.Errorf("segment %d: invalid range [%d, %d)", i, segment.From, segment.To)
		}

		signals := make([]control.Signal, 0, len(segment.Signals))
		for _, name := range segment.Signals {
			signal, ok := control.ParseSignal(name)
			if !ok {
				return nil, fmt.Errorf("segment %d: unknown signal %q", i, name)
			}
			signals = append(signals, signal)
		}

		script.Segments = append(script.Segments, Segment{
			From:    uint64(segment.From),
			To:      uint64(segment.To),
			Signals: signals,
		})
	}

	return script, nil
}

func (s *Script) Update(w *tether.World, dt float64) {
	s.tick = w.Tick()
}

func (s *Script) Pressed(signal control.Signal) bool {
	for _, segment := range s.Segments {
		if !segment.active(s.tick) {
			continue
		}
		for _, pressed := range segment.Signals {
			if pressed == signal {
				return true
			}
		}
	}
	return false
}

// End is the first tick after the last segment
func (s *Script) End() uint64 {
	var end uint64
	for _, segment := range s.Segments {
		end = max(end, segment.To)
	}
	return end
}
