package cli

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/download"
)

func newExtractorsCommand(o *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "extractors",
		Short: "List the extractor table in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := download.NewSupervisor(download.WithConfig(o.cfg)).Registry()

			data := pterm.TableData{{"Key", "Name", "Returns", "Flags", "Description"}}
			for _, d := range reg.Descriptors() {
				if d.Hidden && !all {
					continue
				}
				var flags []string
				if d.Fallback {
					flags = append(flags, "fallback")
				}
				if d.Disabled {
					flags = append(flags, "disabled")
				}
				if d.Broken {
					flags = append(flags, "broken")
				}
				if d.SupportsLogin() {
					flags = append(flags, "login")
				}
				data = append(data, []string{
					d.Key,
					d.Name,
					string(d.Returns),
					orDash(strings.Join(flags, ",")),
					orDash(strings.TrimSpace(d.DescriptionText(false))),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden extractors")
	return cmd
}
