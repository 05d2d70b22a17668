package main

import (
	"fmt"

	"github.com/inkwell/internal/service"
	"github.com/spf13/cobra"
)

func newBackfillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-slugs",
		Short: "Generate slugs for posts, tags and categories that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := service.BackfillSlugs(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			a.log.Info().Int("updated", n).Msg("slug backfill finished")
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d slugs\n", n)
			return nil
		},
	}
}
