package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/repository/dao"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := bootstrap()
		if err != nil {
			return err
		}

		gormDB, err := openDatabase(conf)
		if err != nil {
			return err
		}
		defer db.Close(gormDB) //nolint:errcheck

		if err = dao.InitTables(gormDB); err != nil {
			return fmt.Errorf("failed to migrate tables -> %w", err)
		}
		zap.L().Info("tables migrated")

		return nil
	},
}

var checkSchemaCmd = &cobra.Command{
	Use:   "check-schema",
	Short: "Verify every table and column the service uses exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := bootstrap()
		if err != nil {
			return err
		}

		gormDB, err := openDatabase(conf)
		if err != nil {
			return err
		}
		defer db.Close(gormDB) //nolint:errcheck

		if err = dao.CheckSchema(gormDB); err != nil {
			return fmt.Errorf("schema check failed -> %w", err)
		}
		zap.L().Info("schema ok")

		return nil
	},
}
