package cli

import (
	"fmt"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations to the credential store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := getConfigFromContext(ctx)
			logger := getLoggerFromContext(ctx)

			if cfg.Storage.Driver != config.StorageDriverPostgres {
				return errors.NewConfigError(errors.ErrCodeInvalidConfig,
					"Migrations need storage.driver set to postgres", nil)
			}

			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := users.Migrate(ctx, db); err != nil {
				return err
			}
			logger.Info("Database migrations applied")
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
