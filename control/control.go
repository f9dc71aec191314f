// Package control turns directional input into the velocity of player controlled bodies.
package control

import "github.com/go-gl/mathgl/mgl64"

const (
	// Damping is applied to the velocity every tick before input is added
	Damping = 0.95
	// VerticalScale reduces the up/down response relative to the horizontal axes
	VerticalScale = 0.75
)

// Signal is one of the six logical directional controls
type Signal uint8

const (
	SignalForward Signal = iota
	SignalBack
	SignalLeft
	SignalRight
	SignalUp
	SignalDown
)

// Signals lists every signal in a stable order
var Signals = [...]Signal{SignalForward, SignalBack, SignalLeft, SignalRight, SignalUp, SignalDown}

var signalNames = [...]string{"forward", "back", "left", "right", "up", "down"}

func (s Signal) String() string {
	if int(s) < len(signalNames) {
		return signalNames[s]
	}
	return "unknown"
}

// ParseSignal returns the signal with the given name
func ParseSignal(name string) (Signal, bool) {
	for i, n := range signalNames {
		if n == name {
			return Signal(i), true
		}
	}
	return 0, false
}

// Source answers whether a signal is active for the current tick
type Source interface {
	Pressed(signal Signal) bool
}

// State is the input snapshot of a single tick
type State struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
}

// Snapshot queries every signal of src once
func Snapshot(src Source) State {
	if src == nil {
		return State{}
	}

	return State{
		Forward: src.Pressed(SignalForward),
		Back:    src.Pressed(SignalBack),
		Left:    src.Pressed(SignalLeft),
		Right:   src.Pressed(SignalRight),
		Up:      src.Pressed(SignalUp),
		Down:    src.Pressed(SignalDown),
	}
}

// Any reports whether at least one signal is active
func (s State) Any() bool {
	return s.Forward || s.Back || s.Left || s.Right || s.Up || s.Down
}

// Tick damps velocity and then adds one impulse per active signal.
// Opposite signals cancel out.
func Tick(velocity mgl64.Vec3, moveSpeed float64, in State) mgl64.Vec3 {
	return velocity.Mul(Damping).Add(Impulse(moveSpeed, in))
}

// Impulse is the velocity change requested by in, summed per axis so that
// opposite signals sum to exactly zero
func Impulse(moveSpeed float64, in State) mgl64.Vec3 {
	var impulse mgl64.Vec3

	if in.Forward {
		impulse[2] += moveSpeed
	}
	if in.Back {
		impulse[2] -= moveSpeed
	}
	if in.Left {
		impulse[0] += moveSpeed
	}
	if in.Right {
		impulse[0] -= moveSpeed
	}
	if in.Up {
		impulse[1] += moveSpeed * VerticalScale
	}
	if in.Down {
		impulse[1] -= moveSpeed * VerticalScale
	}

	return impulse
}
