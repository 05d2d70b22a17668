package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRoleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Grant or revoke roles",
		Long: `Grant or revoke a role (reader, writer, admin).

Revoking a role here does not reach edit sessions held by a running
server; the server drops them on the user's next request when the
writer role is gone.`,
	}
	cmd.AddCommand(
		newRoleChangeCmd(a, "grant", "Grant a role to a user", true),
		newRoleChangeCmd(a, "revoke", "Revoke a role from a user", false),
	)
	return cmd
}

func newRoleChangeCmd(a *app, use, short string, grant bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username> <role>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			users := a.users()
			user, err := users.FindByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			role := strings.ToLower(strings.TrimSpace(args[1]))
			if grant {
				err = users.Grant(ctx, user.ID, role)
			} else {
				err = users.Revoke(ctx, user.ID, role)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", use, role, err)
			}
			roles, err := users.Roles(ctx, user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has roles %s\n", user.Username, strings.Join(roles, ","))
			return nil
		},
	}
}
