package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"canvass/internal/handler"
	"canvass/internal/service"
	"canvass/internal/validation"
)

// Test seams for the terminal.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// UserAddOptions holds flags for the user add command.
type UserAddOptions struct {
	*RootOptions
	Email     string
	FirstName string
	LastName  string
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage identities",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an identity",
		Long: `Register an identity.

The password is prompted for without echo when stdin is a terminal,
otherwise the first line of stdin is used.

Example:
  recordsctl user add --email ops@example.com --first-name Ops --last-name Team`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			req := handler.RegisterRequest{
				Email:     opts.Email,
				Password:  password,
				FirstName: opts.FirstName,
				LastName:  opts.LastName,
			}
			if err := validation.New().Validate(&req); err != nil {
				return err
			}

			return withEnv(cmd.Context(), func(ctx context.Context, e *env) error {
				res, err := e.auth.Register(ctx, service.RegisterInput{
					Email:     req.Email,
					FirstName: req.FirstName,
					LastName:  req.LastName,
					Password:  req.Password,
				})
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), opts.RootOptions,
					fmt.Sprintf("created %s %s", res.Identity.ID, res.Identity.Email),
					res.Identity)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "last name")
	for _, name := range []string{"email", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func promptPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
