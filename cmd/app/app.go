package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/logger"
)

const defaultConfigPath = "./cmd/app/config.yml"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "arena",
	Short:         "Trading simulation competition API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "config file path")

	rootCmd.AddCommand(serveCmd, migrateCmd, checkSchemaCmd, tokenCmd)
}

// Start runs the command line. With no subcommand it serves the API.
func Start() error {
	return rootCmd.Execute()
}

func bootstrap() (*config.AppConfig, error) {
	conf, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	return conf, nil
}

func openDatabase(conf *config.AppConfig) (*gorm.DB, error) {
	gormDB, err := db.Open(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}
	zap.L().Info("database opened", zap.String("driver", conf.Database.Driver))

	return gormDB, nil
}
