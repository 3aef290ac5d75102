package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/spf13/cobra"
)

func (c *cli) locationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}

	var unpublished bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			location := &models.Location{Name: args[0], IsPublished: !unpublished}
			if err := repository.NewLocationRepository(db).Create(cmd.Context(), location); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created location %d (%s)\n", location.ID, location.Name)
			return nil
		},
	}
	add.Flags().BoolVar(&unpublished, "unpublished", false, "Create the location hidden")

	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			locations, err := repository.NewLocationRepository(db).List(cmd.Context(), false)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPUBLISHED")
			for _, l := range locations {
				fmt.Fprintf(w, "%d\t%s\t%t\n", l.ID, l.Name, l.IsPublished)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list, c.locationPublishCmd("publish", true), c.locationPublishCmd("unpublish", false))
	return cmd
}

func (c *cli) locationPublishCmd(use string, published bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: "Set whether a location is shown on posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid location id %q", args[0])
			}
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			if err := repository.NewLocationRepository(db).SetPublished(cmd.Context(), uint(id), published); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "location %d published=%t\n", id, published)
			return nil
		},
	}
}
