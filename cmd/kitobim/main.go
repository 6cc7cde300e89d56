package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jms1308/kitobim/internal/config"
	applog "github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/repos"
)

func main() {
	root := &cobra.Command{
		Use:           "kitobim",
		Short:         "Kitob Bozori: used book classifieds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var envFile string
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "optional dotenv file")

	load := func() (config.Config, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return cfg, err
		}
		if err := applog.Init(cfg.LogFile, cfg.LogLevel); err != nil {
			applog.L().Warn("log.file.open_fail", zap.String("file", cfg.LogFile), zap.Error(err))
		}
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if cfg.Seed {
				return repos.SeedIfEmpty(cmd.Context(), db)
			}
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		applog.L().Error("kitobim.exit", zap.Error(err))
		applog.Sync()
		os.Exit(1)
	}
	applog.Sync()
}
