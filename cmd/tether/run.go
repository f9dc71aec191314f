package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/akmonengine/tether"
	"github.com/akmonengine/tether/input"
	"github.com/akmonengine/tether/scene"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2)
)

// eventCounts tallies world events during a run
type eventCounts struct {
	contacts int
	sleeps   int
	wakes    int
}

func subscribeEvents(world *tether.World, logger *log.Logger, counts *eventCounts) {
	world.Events.Subscribe(tether.CONTACT_ENTER, func(event tether.Event) {
		e := event.(tether.ContactEnterEvent)
		counts.contacts++
		logger.Printf("tick %d: body %d touches the ground", world.Tick(), e.BodyB)
	})
	world.Events.Subscribe(tether.CONTACT_EXIT, func(event tether.Event) {
		e := event.(tether.ContactExitEvent)
		logger.Printf("tick %d: body %d leaves the ground", world.Tick(), e.BodyB)
	})
	world.Events.Subscribe(tether.ON_SLEEP, func(event tether.Event) {
		counts.sleeps++
	})
	world.Events.Subscribe(tether.ON_WAKE, func(event tether.Event) {
		counts.wakes++
	})
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("steps") {
		cfg.World.Steps = steps
	}

	logger := log.New(os.Stderr, "tether: ", log.LstdFlags)

	script, err := input.NewScript(cfg.Script)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	s, err := scene.Assemble(cfg, script, logger)
	if err != nil {
		return err
	}

	var counts eventCounts
	subscribeEvents(s.World, logger, &counts)

	restLength := s.Length()
	headX := make([]float64, 0, cfg.World.Steps)
	tailY := make([]float64, 0, cfg.World.Steps)
	maxLength := restLength

	for i := 0; i < cfg.World.Steps; i++ {
		s.Step()

		headX = append(headX, s.Head().Transform.Position.X())
		tailY = append(tailY, s.Tail().Transform.Position.Y())
		maxLength = max(maxLength, s.Length())
	}

	sleeping := 0
	for _, id := range s.Bodies {
		if s.World.Body(id).IsSleeping {
			sleeping++
		}
	}

	rows := [][2]string{
		{"steps", fmt.Sprintf("%d (%.2fs)", cfg.World.Steps, float64(cfg.World.Steps)*cfg.World.Dt)},
		{"bodies", fmt.Sprintf("%d, %d joints", len(s.Bodies), len(s.World.Joints))},
		{"head", formatVec(s.Head().Transform.Position)},
		{"tail", formatVec(s.Tail().Transform.Position)},
		{"length", fmt.Sprintf("%.4f (rest %.4f, max %.4f)", s.Length(), restLength, maxLength)},
		{"ground contacts", fmt.Sprintf("%d", counts.contacts)},
		{"sleeping", fmt.Sprintf("%d/%d, %d sleeps, %d wakes", sleeping, len(s.Bodies), counts.sleeps, counts.wakes)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("tether run"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]))
		b.WriteString(valueStyle.Render(row[1]))
		b.WriteString("\n")
	}
	fmt.Fprintln(cmd.OutOrStdout(), panelStyle.Render(strings.TrimRight(b.String(), "\n")))

	if plot && len(headX) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(headX,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("head x"),
		))
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(tailY,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("tail y"),
		))
	}

	return nil
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X(), v.Y(), v.Z())
}
