package commands

import (
	"fmt"
	"text/tabwriter"

	"blogicum/internal/repository"
	"blogicum/internal/service"
	"blogicum/internal/validation"

	"github.com/spf13/cobra"
)

func (c *cli) staffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
		Long:  `Staff users may delete any post. They get no extra rights over comments.`,
	}

	var email, password string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a staff account, or promote the existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateUsername(args[0]); err != nil {
				return err
			}
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			if err := validation.ValidatePassword(password); err != nil {
				return err
			}
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			users := service.NewUserService(repository.NewUserRepository(db))
			user, err := users.EnsureStaff(cmd.Context(), args[0], email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "staff user %d (%s)\n", user.ID, user.Username)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "Email for a new account")
	create.Flags().StringVar(&password, "password", "", "Password for a new account")

	list := &cobra.Command{
		Use:   "list",
		Short: "List staff accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			users, err := repository.NewUserRepository(db).List(cmd.Context(), true, 0, 0)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Email)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(create, list, c.staffSetCmd("promote", true), c.staffSetCmd("demote", false))
	return cmd
}

func (c *cli) staffSetCmd(use string, staff bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: use + " a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.db(cmd)
			if err != nil {
				return err
			}
			if err := repository.NewUserRepository(db).SetStaff(cmd.Context(), args[0], staff); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s staff=%t\n", args[0], staff)
			return nil
		},
	}
}
