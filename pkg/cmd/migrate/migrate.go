package migrate

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/log"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/config"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/db/migrate"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	return cmd
}

func startMigration() error {
	// wait for database
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	log.Info("Performing database migration")
	if err := migrate.MigrateDb(config.DB); err != nil {
		log.Fatal("Could not perform migration", log.ErrorField(err))
	}
	log.Info("Database migration done")
	return nil
}
