package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackyard/stackyard/internal/session"
)

var (
	simTicks     int
	simName      string
	simDwell     time.Duration
	simAutopilot bool
	simNoLedger  bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless session for a number of ticks and print stats",
	Args:  cobra.NoArgs,
	RunE:  runSim,
}

func init() {
	simCmd.Flags().IntVar(&simTicks, "ticks", 3000, "ticks to simulate")
	simCmd.Flags().StringVar(&simName, "name", "sim", "session name recorded in the ledger")
	simCmd.Flags().DurationVar(&simDwell, "dwell", 4*time.Second, "autopilot wait at each generator")
	simCmd.Flags().BoolVar(&simAutopilot, "autopilot", true, "steer the carrier between generators and recyclers")
	simCmd.Flags().BoolVar(&simNoLedger, "no-ledger", false, "do not open the database")
}

func runSim(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, appOptions{db: !simNoLedger})
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.startSession(ctx, simName)
	if err != nil {
		return err
	}
	var ap *session.Autopilot
	if simAutopilot {
		ap = session.NewAutopilot(s, simDwell)
	}

	dt := a.cfg.Game.TickRate.Duration
	for i := 0; i < simTicks && ctx.Err() == nil; i++ {
		if ap != nil {
			ap.Step(dt)
		}
		s.Tick()
	}
	if err := a.finishSession(s); err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), s, ap)
	return nil
}

func printStats(out io.Writer, s *session.Session, ap *session.Autopilot) {
	st := s.Stats()
	fmt.Fprintf(out, "session   %s\n", s.ID)
	fmt.Fprintf(out, "ticks     %d (%s)\n", st.Ticks, st.Elapsed)
	fmt.Fprintf(out, "spawned   %d\n", st.Spawned)
	fmt.Fprintf(out, "deposits  %d\n", st.Deposits)
	fmt.Fprintf(out, "reclaimed %d\n", st.Reclaimed)
	fmt.Fprintf(out, "score     %d\n", st.Score)
	if ap != nil {
		fmt.Fprintf(out, "laps      %d\n", ap.Laps())
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCAPACITY\tQUEUED\tACTIVE\tHELD")
	for _, c := range st.Categories {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", c.Category, c.Capacity, c.Queued, c.Active, c.Held)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
