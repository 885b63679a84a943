package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/render"
	"github.com/stackyard/stackyard/internal/sensor"
	"github.com/stackyard/stackyard/internal/session"
)

// Terminals report presses, not releases: a direction stays held this long
// after its last key event.
const keyHold = 250 * time.Millisecond

// cellPx approximates pixels per cell so swipe distances match config.
const (
	cellPxX = 8
	cellPxY = 16
)

var viewLogFile string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Play the scene in the terminal (arrows/WASD move, drag to swipe, tab switches, q quits)",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewLogFile, "log-file", "stackyard-view.log", "log destination while the screen is active")
}

func runView(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{db: true, logFile: viewLogFile})
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.startSession(ctx, "view")
	if err != nil {
		return err
	}

	screen, err := openScreen()
	if err != nil {
		return errors.Join(err, a.finishSession(s))
	}
	screen.EnableMouse()

	v := render.NewViewer(screen, s.World)
	setupViewer(v, s, a.layout)

	loopErr := viewLoop(screen, v, s, a.cfg.Game.TickRate.Duration)
	screen.Fini()
	if err := a.finishSession(s); err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), s, nil)
	return loopErr
}

func openScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return screen, nil
}

func setupViewer(v *render.Viewer, s *session.Session, layout *data.Scene) {
	v.Mark(s.Carrier.ID(), '@', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	if s.Vehicle != nil {
		v.Mark(s.Vehicle.ID(), 'V', tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true))
	}
	for _, g := range layout.Generators {
		box := sensor.BoxFrom(g.Zone)
		v.AddZone(render.Zone{Name: g.Name, Min: box.Min, Max: box.Max, Style: tcell.StyleDefault.Foreground(tcell.ColorGreen)})
	}
	for _, r := range layout.Recyclers {
		box := sensor.BoxFrom(r.Zone)
		v.AddZone(render.Zone{Name: r.Name, Min: box.Min, Max: box.Max, Style: tcell.StyleDefault.Foreground(tcell.ColorRed)})
	}
}

func viewLoop(screen tcell.Screen, v *render.Viewer, s *session.Session, tickRate time.Duration) error {
	events := make(chan tcell.Event, 32)
	stopCh := make(chan struct{})
	defer close(stopCh)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stopCh:
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	var lastKey time.Time
	dragging := false
	for {
		select {
		case <-sigCh:
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quit := handleKey(ev, s); quit {
					return nil
				}
				lastKey = time.Now()
			case *tcell.EventMouse:
				x, y := ev.Position()
				px, py := float64(x*cellPxX), -float64(y*cellPxY)
				switch {
				case ev.Buttons()&tcell.Button1 != 0 && !dragging:
					dragging = true
					s.Input.PointerDown(px, py)
				case ev.Buttons()&tcell.Button1 != 0:
					s.Input.PointerMove(px, py)
				case dragging:
					dragging = false
					s.Input.PointerUp()
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			if !lastKey.IsZero() && time.Since(lastKey) > keyHold {
				s.Input.SetAxes(0, 0)
				lastKey = time.Time{}
			}
			s.Tick()
			v.Draw(s.World.WorldPosition(s.Switcher.Current()), hud(v, s))
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func handleKey(ev *tcell.EventKey, s *session.Session) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab:
		s.Switcher.Next()
		return false
	case tcell.KeyUp:
		s.Input.SetAxes(0, 1)
	case tcell.KeyDown:
		s.Input.SetAxes(0, -1)
	case tcell.KeyLeft:
		s.Input.SetAxes(-1, 0)
	case tcell.KeyRight:
		s.Input.SetAxes(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'w':
			s.Input.SetAxes(0, 1)
		case 's':
			s.Input.SetAxes(0, -1)
		case 'a':
			s.Input.SetAxes(-1, 0)
		case 'd':
			s.Input.SetAxes(1, 0)
		}
	}
	return false
}

func hud(v *render.Viewer, s *session.Session) []string {
	st := s.Stats()
	lines := []string{
		fmt.Sprintf("%s  %s  score %d  deposits %d  t %s",
			s.Switcher.CurrentName(), s.Carrier.State(), st.Score, st.Deposits, st.Elapsed.Truncate(time.Second)),
	}
	for _, c := range st.Categories {
		lines = append(lines, v.HeldLine(c.Category, c.Held))
	}
	return lines
}
