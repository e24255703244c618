package main

import (
	"errors"
	"fmt"

	"coral-embed-be/embed"

	"github.com/spf13/cobra"
)

func newSanitizeCmd(opts *options) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Strip unsafe markup from a comment body",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			san, err := opts.sanitizer()
			if err != nil {
				return err
			}

			res, err := san.Sanitize(embed.Markup(body))
			if err != nil {
				return err
			}
			out, err := res.Fragment.InnerHTML()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			if stats {
				fmt.Fprintf(cmd.ErrOrStderr(), "spoilers=%d sarcasm=%d stripped=%d\n",
					len(res.Spoilers), len(res.Sarcasms), res.Stripped)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Print marker and stripped counts to stderr")
	return cmd
}

func newTransformCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transform [file]",
		Short: "Sanitize a comment body and decorate spoilers and sarcasm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			t, err := opts.transformer()
			if err != nil {
				return err
			}

			out, err := t.Transform(embed.Markup(body))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newComposeCmd(opts *options) *cobra.Command {
	var (
		commentID     string
		author        string
		allowReplies  bool
		reactionLabel string
	)

	cmd := &cobra.Command{
		Use:   "compose [file]",
		Short: "Build the embed code of a comment",
		Long: `Compose runs the full pipeline on a comment body and prints the embed snippet.
Comments without a body have no embed code and make compose fail.

Examples:
  embedctl compose body.html --comment-id c1 --author ann
  echo '<p>hi</p>' | embedctl compose --comment-id c1 --allow-replies=false`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			t, err := opts.transformer()
			if err != nil {
				return err
			}

			code, err := embed.Build(t, embed.Comment{
				ID:         commentID,
				AuthorName: author,
				Body:       body,
			}, embed.Settings{
				AllowReplies:  &allowReplies,
				ReactionLabel: reactionLabel,
			})
			if errors.Is(err, embed.ErrEmptyBody) {
				return fmt.Errorf("comment %s: %w", commentID, err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().StringVar(&commentID, "comment-id", "", "Comment id (required)")
	cmd.Flags().StringVar(&author, "author", "", "Author name")
	cmd.Flags().BoolVar(&allowReplies, "allow-replies", true, "Allow replies from the embed")
	cmd.Flags().StringVar(&reactionLabel, "reaction-label", "Respect", "Reaction label")
	_ = cmd.MarkFlagRequired("comment-id")
	return cmd
}
