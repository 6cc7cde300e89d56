package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jms1308/kitobim/internal/config"
	"github.com/jms1308/kitobim/internal/http/handlers"
	applog "github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/repos"
)

func serve(ctx context.Context, cfg config.Config) error {
	log := applog.L()

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Seed {
		if err := repos.SeedIfEmpty(ctx, db); err != nil {
			return err
		}
	}

	deps := handlers.NewDeps(db, cfg)
	app := handlers.NewApp(deps, cfg)

	janitor := cron.New()
	if _, err := janitor.AddFunc("@hourly", func() {
		n, err := deps.Auth.PruneSessions(context.Background(), cfg.SessionTTL)
		if err != nil {
			log.Error("sessions.prune", zap.Error(err))
			return
		}
		log.Info("sessions.prune", zap.Int64("deleted", n))
	}); err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	listenErr := make(chan error, 1)
	go func() {
		log.Info("http.start", zap.String("addr", cfg.Addr()), zap.String("db", cfg.DBDriver))
		listenErr <- app.Listen(cfg.Addr())
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return err
	case s := <-sig:
		log.Info("shutdown", zap.String("signal", s.String()))
	case <-ctx.Done():
	}

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("http.shutdown", zap.Error(err))
	}
	log.Info("shutdown.done")
	return nil
}
