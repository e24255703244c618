package main

import (
	"fmt"
	"io"
	"os"

	"coral-embed-be/embed"

	"github.com/spf13/cobra"
)

// options shared by every subcommand
type options struct {
	allowList   string
	maxBytes    int
	revealTitle string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "embedctl",
		Short: "embedctl - sanitize, decorate and compose comment embeds",
		Long: `embedctl runs the same pipeline the API uses to build comment embed code.

Usage:
  embedctl sanitize [file] [flags]
  embedctl transform [file] [flags]
  embedctl compose [file] --comment-id <id> [flags]`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.allowList, "allowlist", "", "TOML allow-list (default: built-in)")
	root.PersistentFlags().IntVar(&opts.maxBytes, "max-bytes", embed.DefaultMaxBytes, "Largest accepted body in bytes")
	root.PersistentFlags().StringVar(&opts.revealTitle, "reveal-title", embed.DefaultRevealTitle, "Title of masked spoilers")

	root.AddCommand(newSanitizeCmd(opts), newTransformCmd(opts), newComposeCmd(opts))
	return root
}

func (o *options) sanitizer() (*embed.Sanitizer, error) {
	var al *embed.AllowList
	if o.allowList != "" {
		loaded, err := embed.LoadAllowList(o.allowList)
		if err != nil {
			return nil, err
		}
		al = loaded
	}
	san := embed.NewSanitizer(al)
	san.MaxBytes = o.maxBytes
	return san, nil
}

func (o *options) transformer() (*embed.Transformer, error) {
	san, err := o.sanitizer()
	if err != nil {
		return nil, err
	}
	return embed.NewTransformer(san, o.revealTitle), nil
}

// readBody reads the comment body from the named file, or from in when
// the name is empty or "-"
func readBody(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}
