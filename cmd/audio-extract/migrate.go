package main

import (
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/audios-sac-extract/internal/config"
	"github.com/suPer8Hu/audios-sac-extract/internal/db"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and the job, batch and audio tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			a, err := base(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := db.Migrate(a.db, a.cfg.DBSchema); err != nil {
				return err
			}
			a.log.Info("migration finished", zap.String("driver", a.cfg.DBDriver), zap.String("schema", a.cfg.DBSchema))
			return nil
		},
	}
}
