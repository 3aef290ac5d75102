package commands

import (
	"fmt"
	"text/tabwriter"

	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"github.com/spf13/cobra"
)

func (c *cli) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var (
		title       string
		description string
		unpublished bool
	)
	add := &cobra.Command{
		Use:   "add <slug>",
		Short: "Create a category",
		Long: `Create a category. Slugs are lowercase letters, digits, '-' and '_'.

Examples:
  blogctl category add travel --title Travel --description "Trips and places"
  blogctl category add drafts --title Drafts --unpublished`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if err := validation.ValidateSlug(slug); err != nil {
				return err
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			category := &models.Category{
				Title:       title,
				Description: description,
				Slug:        slug,
				IsPublished: !unpublished,
			}
			if err := repository.NewCategoryRepository(db).Create(cmd.Context(), category); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created category %d (%s)\n", category.ID, category.Slug)
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "Category title")
	add.Flags().StringVar(&description, "description", "", "Category description")
	add.Flags().BoolVar(&unpublished, "unpublished", false, "Create the category hidden")

	var publishedOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			categories, err := repository.NewCategoryRepository(db).List(cmd.Context(), publishedOnly)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tTITLE\tPUBLISHED")
			for _, cat := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", cat.ID, cat.Slug, cat.Title, cat.IsPublished)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&publishedOnly, "published", false, "Only published categories")

	cmd.AddCommand(add, list, c.categoryPublishCmd("publish", true), c.categoryPublishCmd("unpublish", false))
	return cmd
}

func (c *cli) categoryPublishCmd(use string, published bool) *cobra.Command {
	short := "Show a category and its posts"
	if !published {
		short = "Hide a category and all of its posts"
	}
	return &cobra.Command{
		Use:   use + " <slug>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			if err := repository.NewCategoryRepository(db).SetPublished(cmd.Context(), args[0], published); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "category %s published=%t\n", args[0], published)
			return nil
		},
	}
}
