package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/catalog"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog apps and what is installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return listApps(cmd.Context(), cmd.OutOrStdout(), a.catalog, a.store)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listApps(ctx context.Context, out io.Writer, cat *catalog.Catalog, store library.Store) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLATEST\tINSTALLED")
	for i := range cat.Apps {
		app := &cat.Apps[i]
		latest := "-"
		if v, ok := app.Latest(); ok {
			latest = v.Number
		}
		installed := "-"
		entry, ok, err := store.TryGet(ctx, app.ID)
		if err != nil {
			return err
		}
		if ok && entry.Data.Installed() {
			installed = entry.Data.Install.VersionNumber
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", app.ID, app.Name, latest, installed)
	}
	return w.Flush()
}
