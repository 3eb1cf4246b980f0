// Package cli implements quilogctl, the operator command line for a Quilog
// document store.
package cli

import (
	"context"
	"fmt"
	"slices"

	"quilog/internal/repository"

	"github.com/spf13/cobra"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats lists the allowed --format values.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// StoreOpener opens the store a command runs against. The returned func
// releases it.
type StoreOpener func(ctx context.Context) (*repository.Store, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string
	open   StoreOpener
}

// NewRootCommand creates the quilogctl root command.
func NewRootCommand(open StoreOpener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "quilogctl",
		Short: "Inspect and exercise a Quilog store",
		Long: `quilogctl reads feeds and engagement straight from the configured
document store and can like or comment on behalf of a user.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")

	cmd.AddCommand(newFeedCommand(opts))
	cmd.AddCommand(newPostCommand(opts))
	cmd.AddCommand(newEngagementCommand(opts))
	cmd.AddCommand(newLikeCommand(opts))
	cmd.AddCommand(newCommentCommand(opts))
	cmd.AddCommand(newOrphansCommand(opts))
	cmd.AddCommand(newBenchCommand(opts))

	return cmd
}

// withStore opens the store for the duration of fn.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *repository.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, release, err := o.open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer release()
	return fn(ctx, store)
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return &Printer{Format: o.Format, Writer: cmd.OutOrStdout()}
}
