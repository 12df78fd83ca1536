package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"canvass/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	File string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load identities and records from a YAML fixture",
		Long: `Load identities and records from a YAML fixture.

Users whose email is already registered are skipped together with their records.

Example:
  recordsctl seed --file fixtures.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(opts.File)
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				res, err := seed.Apply(ctx, f, e.auth, e.records)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.RootOptions,
					fmt.Sprintf("users created: %d, skipped: %d, records created: %d",
						res.UsersCreated, res.UsersSkipped, res.RecordsCreated),
					res)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "fixture file (YAML)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
