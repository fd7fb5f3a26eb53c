package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"signal-io/internal/config"
)

var migrateSink string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema of a database sink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		driver := migrateSink
		if driver == "" {
			driver = cfg.Store.Driver
		}
		switch driver {
		case config.DriverSQLite, config.DriverPostgres, config.DriverClickhouse:
		default:
			return eris.Errorf("migrate: sink %q has no schema (want sqlite, postgres or clickhouse)", driver)
		}

		env, err := openSink(cmd.Context(), driver)
		if err != nil {
			return eris.Wrapf(err, "migrate %s", driver)
		}
		env.Close()

		zap.L().Info("migrations applied", zap.String("sink", driver))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSink, "sink", "", "sqlite, postgres or clickhouse (default store.driver)")
	rootCmd.AddCommand(migrateCmd)
}
