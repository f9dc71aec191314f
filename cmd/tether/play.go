package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/akmonengine/tether/control"
	"github.com/akmonengine/tether/input"
	"github.com/akmonengine/tether/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

// Horizontal world axis drawn by a viewport, y is always vertical
const (
	frontView = 0 // x, left/right
	sideView  = 2 // z, forward/back
)

// viewport maps a vertical world plane to terminal cells
type viewport struct {
	width, height int
	axis          int
	center        mgl64.Vec3
	// world units per cell row, a cell is about twice as high as wide
	scale float64
}

// project returns the cell of p, ok is false when it falls outside the screen
func (v viewport) project(p mgl64.Vec3) (x, y int, ok bool) {
	x = v.width/2 + int(roundHalf((p[v.axis]-v.center[v.axis])/v.scale*2))
	y = v.height/2 - int(roundHalf((p.Y()-v.center.Y())/v.scale))
	return x, y, x >= 0 && x < v.width && y >= 0 && y < v.height
}

func roundHalf(f float64) float64 {
	if f < 0 {
		return f - 0.5
	}
	return f + 0.5
}

// fitViewport frames the whole chain and the ground in the drawing area
func fitViewport(width, height, axis int, s *scene.Scene) viewport {
	extent := s.Length() + s.Config.Chain.NodeSize
	if s.HasGround() {
		extent = max(extent, s.Config.Chain.Origin.Y()-s.Config.Ground.Height)
	}

	rows := max(height-2, 1)
	return viewport{
		width:  width,
		height: rows,
		axis:   axis,
		center: s.Config.Chain.Origin.Sub(mgl64.Vec3{0, extent / 2, 0}),
		scale:  max(extent*1.1/float64(rows), 1e-6),
	}
}

func playScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out, "tether: ", log.LstdFlags)

	keyboard := input.NewKeyboard(input.DefaultHold)
	s, err := scene.Assemble(cfg, keyboard, logger)
	if err != nil {
		return err
	}
	var counts eventCounts
	subscribeEvents(s.World, logger, &counts)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	axis := frontView
	width, height := screen.Size()
	view := fitViewport(width, height, axis, s)

	ticker := time.NewTicker(time.Duration(cfg.World.Dt * float64(time.Second)))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
				if ev.Key() == tcell.KeyTab {
					axis = frontView + sideView - axis
					view = fitViewport(width, height, axis, s)
					continue
				}
				keyboard.HandleEvent(ev)
			case *tcell.EventResize:
				screen.Sync()
				width, height = screen.Size()
				view = fitViewport(width, height, axis, s)
			}

		case <-ticker.C:
			s.Step()
			draw(screen, view, s, keyboard)
		}
	}
}

var (
	headStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	linkStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	sleepStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	groundStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

func draw(screen tcell.Screen, view viewport, s *scene.Scene, src control.Source) {
	screen.Clear()

	if s.HasGround() {
		_, y, _ := view.project(mgl64.Vec3{0, s.Config.Ground.Height, 0})
		if y >= 0 && y < view.height {
			for x := 0; x < view.width; x++ {
				screen.SetContent(x, y, '▀', nil, groundStyle)
			}
		}
	}

	// Tail first so the head stays visible on top
	for i := len(s.Bodies) - 1; i >= 0; i-- {
		body := s.World.Body(s.Bodies[i])
		x, y, ok := view.project(body.Transform.Position)
		if !ok {
			continue
		}
		switch {
		case i == s.Chain.Head:
			screen.SetContent(x, y, '@', nil, headStyle)
		case body.IsSleeping:
			screen.SetContent(x, y, 'o', nil, sleepStyle)
		default:
			screen.SetContent(x, y, 'o', nil, linkStyle)
		}
	}

	head := s.Head()
	status := fmt.Sprintf(" %s  tick %d  head %s  v %s  keys %s  [arrows] move [w/s] up/down [tab] view [q] quit",
		viewName(view.axis), s.World.Tick(), formatVec(head.Transform.Position), formatVec(head.Velocity), activeSignals(src))
	drawText(screen, 0, view.height+1, status, statusStyle)

	screen.Show()
}

func viewName(axis int) string {
	if axis == sideView {
		return "side z/y"
	}
	return "front x/y"
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func activeSignals(src control.Source) string {
	active := ""
	for _, signal := range control.Signals {
		if src.Pressed(signal) {
			if active != "" {
				active += "+"
			}
			active += signal.String()
		}
	}
	if active == "" {
		return "-"
	}
	return active
}
