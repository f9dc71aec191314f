// Package input provides the control sources of a scene: the terminal keyboard and timed scripts.
package input

import (
	"time"
	"unicode"

	"github.com/akmonengine/tether/control"
	"github.com/gdamore/tcell/v2"
)

// DefaultHold covers the delay before a terminal starts repeating a held key
const DefaultHold = 250 * time.Millisecond

// DefaultKeys binds the arrows to the horizontal signals
var DefaultKeys = map[tcell.Key]control.Signal{
	tcell.KeyUp:    control.SignalForward,
	tcell.KeyDown:  control.SignalBack,
	tcell.KeyLeft:  control.SignalLeft,
	tcell.KeyRight: control.SignalRight,
}

// DefaultRunes binds w and s to the vertical signals
var DefaultRunes = map[rune]control.Signal{
	'w': control.SignalUp,
	's': control.SignalDown,
}

// Keyboard is a control.Source fed with tcell key events.
// Terminals only report key presses, so a signal stays active for Hold after its last event.
// It is not safe for concurrent use: events and steps must come from the same goroutine.
type Keyboard struct {
	Hold  time.Duration
	Keys  map[tcell.Key]control.Signal
	Runes map[rune]control.Signal

	lastPress [len(control.Signals)]time.Time
	now       func() time.Time
}

func NewKeyboard(hold time.Duration) *Keyboard {
	return &Keyboard{
		Hold:  hold,
		Keys:  DefaultKeys,
		Runes: DefaultRunes,
		now:   time.Now,
	}
}

// HandleEvent records a bound key press, it returns false for any other event
func (k *Keyboard) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}

	if key.Key() == tcell.KeyRune {
		signal, ok := k.Runes[unicode.ToLower(key.Rune())]
		if !ok {
			return false
		}
		k.Press(signal)
		return true
	}

	signal, ok := k.Keys[key.Key()]
	if !ok {
		return false
	}
	k.Press(signal)
	return true
}

func (k *Keyboard) Press(signal control.Signal) {
	if int(signal) < len(k.lastPress) {
		k.lastPress[signal] = k.now()
	}
}

// Release drops every held signal
func (k *Keyboard) Release() {
	k.lastPress = [len(control.Signals)]time.Time{}
}

func (k *Keyboard) Pressed(signal control.Signal) bool {
	if int(signal) >= len(k.lastPress) || k.lastPress[signal].IsZero() {
		return false
	}
	return k.now().Sub(k.lastPress[signal]) < k.Hold
}
