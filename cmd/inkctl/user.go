package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd(a), newUserListCmd(a))
	return cmd
}

func newUserCreateCmd(a *app) *cobra.Command {
	var fullName string
	var roles []string

	cmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create a user with the reader role",
		Long: `Create a user account. Every account is a reader; pass --role to
grant writer or admin at the same time.

Examples:
  inkctl user create alice s3cret!
  inkctl user create bob s3cret! --full-name "Bob" --role writer --role admin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			users := a.users()
			user, err := users.Create(ctx, args[0], args[1], fullName)
			if err != nil {
				return fmt.Errorf("create user %s: %w", args[0], err)
			}
			for _, role := range roles {
				if err := users.Grant(ctx, user.ID, role); err != nil {
					return fmt.Errorf("grant %s to %s: %w", role, user.Username, err)
				}
			}
			granted, err := users.Roles(ctx, user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d) with roles %s\n",
				user.Username, user.ID, strings.Join(granted, ","))
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	cmd.Flags().StringArrayVar(&roles, "role", nil, "extra role to grant (writer or admin), repeatable")
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.users().ListWithRoles(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tFULL NAME\tROLES\tCREATED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					u.ID, u.Username, u.FullName, strings.Join(u.Roles, ","), u.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}
