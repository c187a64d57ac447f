// Package main contains the entrypoint for the webhook bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"pagebot/internal/bot"
	"pagebot/internal/bot/tasks"
	"pagebot/internal/config"
	"pagebot/internal/content"
	"pagebot/internal/database"
	"pagebot/internal/logger"
	"pagebot/internal/messenger"
	"pagebot/internal/metrics"
	"pagebot/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, database,
// send client, classifier, responder, webhook server, scheduler), runs them
// until the context is cancelled, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "", "Path to configuration file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	metrics.Register()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	catalog, err := content.Load()
	if err != nil {
		log.Error("Failed to load content table", "error", err)
		return 1
	}

	client := messenger.NewGraphClient(cfg.Messenger, log)
	responder := bot.NewResponder(client, clockwork.NewRealClock(), log)
	classifier := bot.NewClassifier(catalog, cfg.Messenger.ServerURL)
	processor := bot.NewProcessor(log, store, classifier, responder)

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Reminder: bot.NewReminderNotifier(responder),
		Config:   cfg,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	server := webhook.NewServer(cfg, log, store, processor)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gCtx)
	})

	g.Go(func() error {
		if err := sched.Start(); err != nil {
			return err
		}
		<-gCtx.Done()
		return sched.Stop()
	})

	log.Info("Bot running. Waiting for shutdown signal or error...")
	runErr := g.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}
