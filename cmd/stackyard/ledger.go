package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stackyard/stackyard/internal/persist"
)

var (
	ledgerSession string
	ledgerList    int
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Print per-category totals recorded for a session",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().StringVar(&ledgerSession, "session", "", "session id (default: latest)")
	ledgerCmd.Flags().IntVar(&ledgerList, "list", 0, "list the N most recent sessions instead")
}

func runLedger(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{db: true})
	if err != nil {
		return err
	}
	defer a.close()
	if a.db == nil {
		return errors.New("ledger needs database.driver to be set")
	}
	out := cmd.OutOrStdout()

	if ledgerList > 0 {
		rows, err := a.sessions.List(ctx, ledgerList)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTARTED\tTICKS\tSCORE")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.Name, r.StartedAt.Format(time.DateTime), r.Ticks, r.Score)
		}
		return w.Flush()
	}

	var row *persist.SessionRow
	if ledgerSession != "" {
		id, err := uuid.Parse(ledgerSession)
		if err != nil {
			return fmt.Errorf("--session: %w", err)
		}
		row, err = a.sessions.Load(ctx, id)
		if err != nil {
			return err
		}
	} else {
		row, err = a.sessions.Latest(ctx)
		if err != nil {
			return err
		}
	}
	if row == nil {
		return errors.New("no such session")
	}

	totals, err := a.ledger.Totals(ctx, row.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %s (%s) score %d, rules %s\n\n", row.ID, row.Name, row.Score, short(row.RulesDigest))
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tCATEGORY\tCOUNT\tAMOUNT")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", t.Kind, t.Category, t.Count, t.Amount)
	}
	return w.Flush()
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
