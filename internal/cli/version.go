package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/compose/pkg/compose"
)

const modulePath = "github.com/mesh-intelligence/compose"

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the composectl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "composectl v%s\nmodule: %s\n", compose.Version, modulePath)
			return nil
		},
	}
}
