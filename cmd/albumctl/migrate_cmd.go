package main

import (
	"github.com/spf13/cobra"

	"github.com/yigit/photoalbum/internal/bootstrap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := loadConfig(opts)
			if err != nil {
				return err
			}
			database, err := connect(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := bootstrap.RunMigrations(cfg, database.Pool, lgr); err != nil {
				return withCode(exitDB, err)
			}
			return nil
		},
	}
}
