package cmd

import (
	"fmt"
	"os"

	"github.com/jagwell/jagwell/config"
	"github.com/jagwell/jagwell/model"
	"github.com/jagwell/jagwell/util"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connectDatabase is replaced in tests.
var connectDatabase = config.ConnectDatabase

// NewRootCommand builds the jagwell CLI. Without a subcommand it serves HTTP.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jagwell",
		Short:         "JagWell school wellness tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newCreateUserCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		util.Log().Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// openDatabase loads the config, initialises logging and returns a migrated pool.
func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg := config.LoadConfig()
	util.InitLogger(cfg.LogLevel, cfg.AppEnv)

	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, db, nil
}
