package cli

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ytget/tubegrab/internal/download"
	"github.com/ytget/tubegrab/internal/errors"
	"github.com/ytget/tubegrab/internal/extractor"
)

func newResolveCommand(o *options) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "resolve <url-or-query>",
		Short: "Show which extractor claims an input",
		Long: `Resolve an input against the extractor table without downloading.

With --expand the bound handler also runs, listing the entries a playlist
job would download.

Examples:
  tubegrab resolve "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123"
  tubegrab resolve --expand "https://www.youtube.com/playlist?list=PL123"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := download.NewSupervisor(download.WithConfig(o.cfg)).Registry()
			input := args[0]
			d := reg.Resolve(input)

			if err := renderDescriptor(cmd, d, input); err != nil {
				return err
			}
			if !expand {
				return nil
			}

			ctx := cmd.Context()
			if o.cfg.Network.ExpandTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, o.cfg.Network.ExpandTimeout)
				defer cancel()
			}
			entries, err := reg.Handler(d).Entries(ctx, input, d)
			if err != nil {
				return errors.Wrapf(errors.Mark(err, errors.ErrTransfer), "expand %s", d.Key)
			}
			return renderEntries(cmd, entries)
		},
	}

	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "run the handler and list the entries")
	return cmd
}

func renderDescriptor(cmd *cobra.Command, d *extractor.Descriptor, input string) error {
	data := pterm.TableData{
		{"Descriptor", d.Key},
		{"Name", d.Name},
		{"Returns", string(d.Returns)},
		{"Collection", strconv.FormatBool(d.Collection())},
		{"ID", orDash(d.MatchID(input))},
	}
	return pterm.DefaultTable.WithData(data).WithWriter(cmd.OutOrStdout()).Render()
}

func renderEntries(cmd *cobra.Command, entries []extractor.Entry) error {
	data := pterm.TableData{{"#", "ID", "Title", "URL"}}
	for i, e := range entries {
		data = append(data, []string{strconv.Itoa(i + 1), orDash(e.ID), orDash(e.Title), e.URL})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
