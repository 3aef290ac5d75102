package commands

import (
	"fmt"

	"blogicum/internal/repository"
	"blogicum/internal/seed"

	"github.com/spf13/cobra"
)

func (c *cli) fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Load reference data from YAML",
	}

	load := &cobra.Command{
		Use:   "load <file>",
		Short: "Upsert categories by slug and locations by name",
		Long: `Load categories and locations from a YAML file. Categories are matched on
slug and updated in place, locations are created when no row has the name.

Example:
  blogctl fixtures load fixtures.example.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := seed.LoadFixturesFile(args[0])
			if err != nil {
				return err
			}
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			err = fx.Apply(cmd.Context(),
				repository.NewCategoryRepository(db),
				repository.NewLocationRepository(db))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d categories, %d locations\n",
				len(fx.Categories), len(fx.Locations))
			return nil
		},
	}

	cmd.AddCommand(load)
	return cmd
}
