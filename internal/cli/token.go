package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"canvass/internal/auth"
	"canvass/internal/config"
)

// TokenIssueOptions holds flags for the token issue command.
type TokenIssueOptions struct {
	*RootOptions
	Email string
}

type tokenOutput struct {
	IdentityID string `json:"identity_id"`
	Token      string `json:"token,omitempty"`
	ExpiresIn  string `json:"expires_in,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	cmd.AddCommand(newTokenInspectCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenIssueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Print a bearer token for an existing identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				identity, err := e.identities.FindByEmail(ctx, opts.Email)
				if err != nil {
					return fmt.Errorf("%s: %w", opts.Email, err)
				}
				token, err := e.tokens.Issue(identity.ID)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.RootOptions, token,
					tokenOutput{IdentityID: identity.ID.String(), Token: token, ExpiresIn: e.tokens.TTL().String()})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email of the identity")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newTokenInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Verify a token and print the identity it was issued for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			id, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn).Verify(args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts, id.String(), tokenOutput{IdentityID: id.String()})
		},
	}
}
