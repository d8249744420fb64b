package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/queries"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded planner passes",
		Long: `Show planner passes recorded with --record, newest first.

Examples:
  cookbook history
  cookbook history --limit 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(appOptions{withDatabase: true})
			if err != nil {
				return err
			}
			defer app.close()

			response, err := app.mediator.Send(app.context(context.Background()), &queries.ListRecentPassesQuery{Limit: limit})
			if err != nil {
				return err
			}
			passes := response.(*queries.ListRecentPassesResponse).Passes

			if jsonOutput {
				return writeJSON(passes)
			}
			if len(passes) == 0 {
				fmt.Println("No passes recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tCATALOG\tMODE\tLAYERS\tRETAINED\tENTRIES\tDURATION")
			for _, p := range passes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					p.ID, p.StartedAt.Local().Format("2006-01-02 15:04:05"), p.CatalogName,
					p.Mode, p.Layers, p.Retained, p.Entries, p.Duration)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of passes to show")

	return cmd
}
