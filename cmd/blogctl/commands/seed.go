package commands

import (
	"fmt"

	"blogicum/internal/seed"

	"github.com/spf13/cobra"
)

func (c *cli) seedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	opts.MaxDays = 365

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo content",
		Long: `Generate users, categories, locations, posts and comments with gofakeit.
Some rows are created unpublished or scheduled so the visibility rules have
something to hide. Every generated user has the password "` + seed.DefaultPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			seeder := seed.NewSeeder(db, opts)
			res, err := seeder.Run(cmd.Context())
			if err != nil {
				return err
			}
			prefix := ""
			if opts.DryRun {
				prefix = "dry run: "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sseeded %d users, %d categories, %d locations, %d posts, %d comments\n",
				prefix, len(res.Users), len(res.Categories), len(res.Locations), len(res.Posts), res.Comments)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users")
	f.IntVar(&opts.NumCategories, "categories", opts.NumCategories, "Number of categories")
	f.IntVar(&opts.NumLocations, "locations", opts.NumLocations, "Number of locations")
	f.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "Number of posts")
	f.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Maximum comments per post")
	f.IntVar(&opts.MaxDays, "max-days", opts.MaxDays, "Spread publication dates over this many days")
	f.BoolVar(&opts.ShouldClean, "clean", false, "Delete existing blog rows first")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Build records without writing them")
	f.BoolVar(&opts.SkipBcrypt, "fast", false, "Skip bcrypt for generated passwords (logins will not work)")
	return cmd
}
