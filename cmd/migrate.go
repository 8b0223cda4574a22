package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-progression/progression/logger"
)

var resetTables bool

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create the progression tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		db, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if resetTables {
			if err := db.ResetTables(ctx); err != nil {
				return err
			}
		}

		logger.LogSystem("Migration completed")
		return nil
	},
}

func init() {
	migrateCMD.Flags().BoolVar(&resetTables, "reset", false, "truncate every progression table after migrating")
	rootCmd.AddCommand(migrateCMD)
}
