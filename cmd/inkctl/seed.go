package main

import (
	"fmt"

	"github.com/inkwell/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	var opts seed.Options

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo content",
		Long: `Create a demo writer, a fixed set of categories and tags, and
randomly generated posts. Categories and tags are reused when they
already exist; posts are always added.

Examples:
  inkctl seed                       # 20 posts by demo-writer
  inkctl seed --posts 100 --seed 7  # reproducible content`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := seed.Run(cmd.Context(), a.db, opts)
			if err != nil {
				return err
			}
			a.log.Info().
				Uint("author_id", res.AuthorID).
				Int("posts", res.Posts).
				Msg("seed finished")
			fmt.Fprintf(cmd.OutOrStdout(), "categories: %d new\ntags: %d new\nposts: %d new\n",
				res.Categories, res.Tags, res.Posts)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Posts, "posts", "n", 20, "number of posts to create")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().StringVar(&opts.Author, "author", seed.DefaultAuthor, "username of the demo writer")
	return cmd
}
