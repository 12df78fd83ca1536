// Package cli implements recordsctl, the operator command line for the
// records service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"canvass/internal/auth"
	"canvass/internal/config"
	"canvass/internal/db"
	"canvass/internal/repository"
	"canvass/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for recordsctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recordsctl",
		Short: "Operate the records service",
		Long:  "Seed fixtures, add identities and issue or inspect bearer tokens against the records database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// env is the storage and service stack a command runs against.
type env struct {
	cfg        *config.Config
	db         *gorm.DB
	auth       service.AuthService
	identities service.IdentityService
	records    service.RecordService
	tokens     *auth.JWTService
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB, false); err != nil {
		_ = db.Close(gormDB)
		return nil, err
	}

	identityRepo := repository.NewIdentityRepository(gormDB)
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	return &env{
		cfg:        cfg,
		db:         gormDB,
		auth:       service.NewAuthService(identityRepo, auth.NewPasswordHasher(cfg.BcryptCost), tokens),
		identities: service.NewIdentityService(identityRepo, nil),
		records:    service.NewRecordService(repository.NewRecordRepository(gormDB)),
		tokens:     tokens,
	}, nil
}

func (e *env) Close() error {
	return db.Close(e.db)
}

func withEnv(ctx context.Context, fn func(context.Context, *env) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.Close() }()
	return fn(ctx, e)
}

// write prints v as indented JSON or the text line, depending on --format.
func write(w io.Writer, opts *RootOptions, text string, v interface{}) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
