package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compose/internal/inspect"
	"github.com/mesh-intelligence/compose/internal/journal"
	"github.com/mesh-intelligence/compose/internal/manifest"
)

func (a *app) newDescribeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "describe -f <manifest> [type...]",
		Short: "Report how each type resolved its keys",
		Long: `Describe builds every type in the manifest and reports, for each key of the
selected types, its kind (data, method, required, conflict, decorator), the
value that won, and the chain of methods it overrides.

With no type names every type is described.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDescribe(cmd, file, args)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "composition manifest")
	return cmd
}

func (a *app) runDescribe(cmd *cobra.Command, file string, names []string) error {
	m, r, err := a.loadRegistry(file, &manifest.Trace{})
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = r.Names()
	}

	reports := make([]inspect.Report, 0, len(names))
	for _, name := range names {
		t, err := r.Get(name)
		if err != nil {
			return err
		}
		reports = append(reports, inspect.Describe(name, t))
	}

	if err := a.record(journal.Run{Command: "describe", Manifest: m.Path, Reports: reports}); err != nil {
		return err
	}

	if a.flags.jsonMode {
		return inspect.WriteJSON(cmd.OutOrStdout(), reports)
	}
	return inspect.WriteText(cmd.OutOrStdout(), reports)
}
