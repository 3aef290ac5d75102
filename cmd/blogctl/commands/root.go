// Package commands implements the blogctl command tree.
package commands

import (
	"context"
	"fmt"
	"os"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connectFunc opens the store. Schema application is skipped for migrate commands.
type connectFunc func(ctx context.Context, applySchema bool) (*gorm.DB, *config.Config, error)

type cli struct {
	connect connectFunc
	verbose bool
}

func defaultConnect(_ context.Context, applySchema bool) (*gorm.DB, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	middleware.Logger = middleware.NewLogger(os.Stderr, cfg.Env)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: applySchema})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, cfg, nil
}

// NewRootCmd builds the command tree against the configured database.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultConnect)
}

func newRootCmd(connect connectFunc) *cobra.Command {
	c := &cli{connect: connect}

	root := &cobra.Command{
		Use:   "blogctl",
		Short: "Blogicum administration tool",
		Long: `blogctl manages what the web pages do not: categories, locations, staff
accounts, schema migrations, demo data and YAML fixtures.

Configuration is read like the server does: config.yml, config.<APP_ENV>.yml
and environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		c.categoryCmd(),
		c.locationCmd(),
		c.staffCmd(),
		c.migrateCmd(),
		c.seedCmd(),
		c.fixturesCmd(),
	)
	return root
}

// db opens the store with its schema applied.
func (c *cli) db(cmd *cobra.Command) (*gorm.DB, error) {
	db, _, err := c.connect(cmd.Context(), true)
	return db, err
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
