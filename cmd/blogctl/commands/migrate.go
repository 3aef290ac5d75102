package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"blogicum/internal/database"

	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the versioned SQL migrations, or sync the schema from
the models. DB_SCHEMA_MODE chooses between sql, auto and hybrid.`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := c.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down <version>",
		Short: "Roll back one applied migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid migration version %q", args[0])
			}
			db, _, err := c.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := database.RollbackMigration(cmd.Context(), db, version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %d\n", version)
			return nil
		},
	}

	auto := &cobra.Command{
		Use:   "auto",
		Short: "Sync tables from the models with GORM AutoMigrate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := c.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema synced from models")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := c.connect(cmd.Context(), false)
			if err != nil {
				return err
			}
			st, err := database.GetSchemaStatus(cmd.Context(), db, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode:        %s\n", st.Mode)
			fmt.Fprintf(out, "environment: %s\n", st.Environment)
			fmt.Fprintf(out, "sql:         %t\n", st.WillRunSQL)
			fmt.Fprintf(out, "automigrate: %t\n", st.WillRunAutoMigrate)
			if !st.WillRunSQL {
				return nil
			}
			fmt.Fprintf(out, "applied:     %v\n", st.AppliedVersions)
			if len(st.PendingMigrations) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME")
			for _, m := range st.PendingMigrations {
				fmt.Fprintf(w, "%d\t%s\n", m.Version, m.Name)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(up, down, auto, status)
	return cmd
}
