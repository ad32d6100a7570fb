package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-assets/pkg/simpleassets/config"
)

// app carries the database opened for the current command.
type app struct {
	loadConfig func() (*config.ServerConfig, error)
	db         *config.Database
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "admin",
		Short: "Simple Assets admin CLI",
		Long: `A lightweight admin tool for asset management that only requires database access.

Configuration is read from the environment (DATABASE_TYPE, DATABASE_URL,
DB_SCHEMA). A .env file in the current directory is loaded first; variables
already set in the environment win.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := cfg.OpenDatabase(cmd.Context())
			if err != nil {
				return err
			}
			a.db = db
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				a.db.Close()
			}
		},
	}

	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newMigrateCmd(a))
	return root
}

func main() {
	a := &app{
		loadConfig: func() (*config.ServerConfig, error) {
			return config.Load(config.WithDotEnv(), config.WithEnv())
		},
	}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
