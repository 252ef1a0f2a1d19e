package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compose/internal/journal"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize composectl configuration and journal",
		Long:  "Create the configuration directory with a default config.yaml, then create the run journal in the data directory.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

// runInit relies on setup having written config.yaml; it only has to create
// the journal.
func (a *app) runInit(cmd *cobra.Command, args []string) error {
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	j := journal.NewJournal(a.logger)
	if err := j.Attach(dataDir); err != nil {
		return sysError(fmt.Errorf("initialize journal: %w", err))
	}
	if err := j.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize journal: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config: %s\njournal: %s\n", a.configDir, dataDir)
	return nil
}
