package cli

import (
	"context"
	"fmt"
	"slices"

	"resumegenius/internal/auth"
	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/formatters"
	"resumegenius/internal/forms"
	"resumegenius/internal/users"

	"github.com/spf13/cobra"
)

// usersEnv is what a directory operation runs against.
type usersEnv struct {
	svc    *auth.Service
	repo   users.Repository
	logger *errors.Logger
}

// usersFunc runs one directory operation.
type usersFunc func(ctx context.Context, cmd *cobra.Command, env usersEnv, args []string) (any, error)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the user directory",
		Long: `Manage accounts directly in the credential store. These commands need a
persistent store (storage.driver: postgres); the memory store only lives
inside a running server.`,
	}
	cmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, json, markdown")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all users in creation order",
			Args:  cobra.NoArgs,
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, _ []string) (any, error) {
				return env.svc.ListUsers(ctx)
			}),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one user",
			Args:  cobra.ExactArgs(1),
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, args []string) (any, error) {
				return env.svc.GetUser(ctx, args[0])
			}),
		},
		newUsersCreateCmd(),
		&cobra.Command{
			Use:   "approve <id>",
			Short: "Approve a pending registration",
			Args:  cobra.ExactArgs(1),
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, args []string) (any, error) {
				return env.svc.Approve(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "reject <id>",
			Short: "Reject and remove a pending registration",
			Args:  cobra.ExactArgs(1),
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, args []string) (any, error) {
				return removed(env.svc.Reject(ctx, args[0]))
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user",
			Args:  cobra.ExactArgs(1),
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, args []string) (any, error) {
				return removed(env.svc.Delete(ctx, args[0]))
			}),
		},
		newUsersResetPasswordCmd(),
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the demo users that are missing",
			Args:  cobra.NoArgs,
			RunE: withUsers(func(ctx context.Context, _ *cobra.Command, env usersEnv, _ []string) (any, error) {
				if err := seedDemoUsers(ctx, env.svc, env.repo, env.logger); err != nil {
					return nil, err
				}
				return env.svc.ListUsers(ctx)
			}),
		},
	)
	return cmd
}

func newUsersCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: withUsers(func(ctx context.Context, cmd *cobra.Command, env usersEnv, _ []string) (any, error) {
			var form forms.CreateUserForm
			form.Username, _ = cmd.Flags().GetString("username")
			form.Email, _ = cmd.Flags().GetString("email")
			form.Password, _ = cmd.Flags().GetString("password")
			form.Role, _ = cmd.Flags().GetString("role")
			approved, _ := cmd.Flags().GetBool("approved")
			form.IsApproved = &approved
			if err := forms.New().Validate(&form); err != nil {
				return nil, err
			}
			return env.svc.CreateByAdmin(ctx, form.Username, form.Email, form.Password, users.Role(form.Role), form.Approved())
		}),
	}
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Initial password")
	cmd.Flags().String("role", string(users.RoleStandard), "Role: admin or standard")
	cmd.Flags().Bool("approved", true, "Create the account already approved")
	for _, name := range []string{"username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUsersResetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password <id>",
		Short: "Replace a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: withUsers(func(ctx context.Context, cmd *cobra.Command, env usersEnv, args []string) (any, error) {
			var form forms.ResetPasswordForm
			form.Password, _ = cmd.Flags().GetString("password")
			if err := forms.New().Validate(&form); err != nil {
				return nil, err
			}
			return env.svc.ResetPassword(ctx, args[0], form.Password)
		}),
	}
	cmd.Flags().String("password", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// withUsers opens the credential store, runs fn and prints its result in the
// requested format.
func withUsers(fn usersFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := getConfigFromContext(ctx)
		logger := getLoggerFromContext(ctx)

		format, _ := cmd.Flags().GetString("format")
		registry := formatters.GlobalRegistry
		if !slices.Contains(registry.GetSupportedFormats(), format) {
			return errors.NewValidationError(errors.ErrCodeValidation,
				fmt.Sprintf("Unsupported output format '%s'. Supported formats: %v", format, registry.GetSupportedFormats()), nil)
		}

		if cfg.Storage.Driver != config.StorageDriverPostgres {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"User commands need storage.driver set to postgres", nil)
		}

		store, err := openUserStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.close() }()

		env := usersEnv{
			svc:    newAuthService(cfg, store.repo, logger),
			repo:   store.repo,
			logger: logger,
		}
		result, err := fn(ctx, cmd, env, args)
		if err != nil {
			return err
		}
		return printResult(cmd, registry, result, format)
	}
}

func printResult(cmd *cobra.Command, registry *formatters.FormatterRegistry, result any, format string) error {
	if msg, ok := result.(string); ok {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
		return err
	}
	output, err := registry.Format(result, format)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeValidation,
			fmt.Sprintf("Failed to format output as %s", format), err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), output)
	return err
}

func removed(ok bool, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrNotFound
	}
	return "User removed", nil
}
