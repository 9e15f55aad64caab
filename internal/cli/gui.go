package cli

import (
	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/ui"
)

func newGUICommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Run(o.cfg, o.version)
		},
	}
}
