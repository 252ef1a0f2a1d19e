package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compose/internal/inspect"
	"github.com/mesh-intelligence/compose/internal/journal"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs, or show one run's reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runShowRun(cmd, args[0])
			}
			return a.runHistory(cmd, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to list (0 for all)")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, limit int) error {
	var runs []journal.Run
	err := a.withJournal(func(j *journal.Journal) error {
		var err error
		runs, err = j.List(limit)
		return err
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		if runs == nil {
			runs = []journal.Run{}
		}
		return writeJSON(w, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tCOMMAND\tTYPES\tCONFLICTS\tDETAIL")
	for _, run := range runs {
		names := make([]string, len(run.Reports))
		for i, rep := range run.Reports {
			names[i] = rep.Type
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID, run.CreatedAt.Local().Format(time.DateTime), run.Command,
			strings.Join(names, ","), run.Conflicts(), run.Detail)
	}
	return tw.Flush()
}

func (a *app) runShowRun(cmd *cobra.Command, runID string) error {
	var run journal.Run
	err := a.withJournal(func(j *journal.Journal) error {
		var err error
		run, err = j.Get(runID)
		return err
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(w, run)
	}
	fmt.Fprintf(w, "run %s: %s %s\n", run.ID, run.Command, run.Manifest)
	if run.Detail != "" {
		fmt.Fprintln(w, run.Detail)
	}
	fmt.Fprintln(w)
	return inspect.WriteText(w, run.Reports)
}
