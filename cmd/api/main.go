package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"todoTracker/internal/app"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "путь к config.yml (без него только умолчания и TODO_*)")
	migrateUp := pflag.Bool("migrate", false, "применить миграции и выйти")
	migrateDown := pflag.Bool("migrate-down", false, "откатить миграции и выйти")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "конфигурация:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)

	if *migrateUp || *migrateDown {
		if err := logger.Init(cfg.Logging.Development, cfg.Logging.Level); err != nil {
			fmt.Fprintln(os.Stderr, "логгер:", err)
			os.Exit(1)
		}
		if err := application.Migrate(ctx, *migrateDown); err != nil {
			logger.Error("Миграции не выполнены", err)
			logger.Sync()
			os.Exit(1)
		}
		logger.Sync()
		return
	}

	if err := application.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "запуск:", err)
		logger.Error("Не удалось запустить приложение", err)
		application.Shutdown()
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		os.Exit(1)
	}
}
