package cmd

import (
	"github.com/spigell/resume-evaluator/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down|version",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "version"},
	Run: func(_ *cobra.Command, args []string) {
		runMigrations(args[0])
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrations(action string) {
	e := newEnv()
	defer e.close()

	dsn := e.config.Database.DSN
	if dsn == "" {
		e.logger.Fatal("database dsn is not configured", zap.String("hint", "set database.dsn or DATABASE_DSN"))
	}

	switch action {
	case "up":
		if err := store.Migrate(dsn, store.Up); err != nil {
			e.logger.Fatal("applying migrations", zap.Error(err))
		}
	case "down":
		if err := store.Migrate(dsn, store.Down); err != nil {
			e.logger.Fatal("rolling back migrations", zap.Error(err))
		}
	case "version":
	default:
		e.logger.Fatal("unknown migrate action", zap.String("action", action))
	}

	current, dirty, err := store.MigrationVersion(dsn)
	if err != nil {
		e.logger.Fatal("reading the schema version", zap.Error(err))
	}
	e.logger.Info("schema version", zap.Uint("version", current), zap.Bool("dirty", dirty))
}
