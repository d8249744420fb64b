package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/cookbook-go/internal/adapters/catalogfile"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/commands"
	"github.com/andrescamacho/cookbook-go/internal/application/crafting/queries"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage stored recipe catalogs",
		Long: `Import, list and export recipe catalogs kept in the database.

Examples:
  cookbook catalog import recipes.yaml --name default
  cookbook catalog list
  cookbook catalog show default > recipes.yaml`,
	}

	cmd.AddCommand(newCatalogImportCommand())
	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogShowCommand())

	return cmd
}

func newCatalogImportCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a catalog file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			def, err := catalogfile.LoadCatalogFile(args[0])
			if err != nil {
				return err
			}
			// Surface name typos with suggestions before touching the database
			if _, err := catalogfile.BuildCatalog(def); err != nil {
				return err
			}

			app, err := newApplication(appOptions{withDatabase: true})
			if err != nil {
				return err
			}
			defer app.close()

			response, err := app.mediator.Send(app.context(context.Background()), &commands.ImportCatalogCommand{
				Name:       name,
				Definition: def,
			})
			if err != nil {
				return err
			}
			res := response.(*commands.ImportCatalogResponse)

			fmt.Printf("✓ Catalog %s imported\n", res.Name)
			fmt.Printf("  Commodities:  %d\n", res.Commodities)
			fmt.Printf("  Recipes:      %d\n", res.Recipes)
			fmt.Printf("  Fingerprint:  %s\n", res.Fingerprint)
			if len(res.Excluded) > 0 {
				fmt.Printf("  Excluded:     %d\n", len(res.Excluded))
				for _, ex := range res.Excluded {
					fmt.Printf("    - %s (%s)\n", ex.Recipe.Key(), ex.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name to store the catalog under (required)")

	return cmd
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(appOptions{withDatabase: true})
			if err != nil {
				return err
			}
			defer app.close()

			response, err := app.mediator.Send(app.context(context.Background()), &queries.GetCatalogQuery{})
			if err != nil {
				return err
			}
			names := response.(*queries.GetCatalogResponse).Names

			if jsonOutput {
				return writeJSON(names)
			}
			if len(names) == 0 {
				fmt.Println("No catalogs stored")
				return nil
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored catalog as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(appOptions{withDatabase: true})
			if err != nil {
				return err
			}
			defer app.close()

			response, err := app.mediator.Send(app.context(context.Background()), &queries.GetCatalogQuery{Name: args[0]})
			if err != nil {
				return err
			}

			data, err := catalogfile.EncodeCatalog(response.(*queries.GetCatalogResponse).Catalog.Definition())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}
