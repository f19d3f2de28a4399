package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/tile-world/internal/config"
	"github.com/annel0/tile-world/internal/logging"
	"github.com/annel0/tile-world/internal/metrics"
	"github.com/annel0/tile-world/internal/runner"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (иначе TILEWORLD_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	consoleLevel, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ logging.level: %v", err)
	}
	fileLevel, err := logging.ParseLevel(cfg.Logging.FileLevel)
	if err != nil {
		log.Fatalf("❌ logging.file_level: %v", err)
	}
	if err := logging.Configure(logging.Config{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: consoleLevel,
		FileLevel:    fileLevel,
	}); err != nil {
		log.Printf("⚠️ Файлы логов недоступны, пишем только в консоль: %v", err)
	}
	if err := logging.InitDefaultLogger("tileworld"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск tile-world: мир %q, хранилище %s", cfg.World.Name, cfg.Storage.Backend)

	rec := metrics.NewRecorder()
	var exporter *metrics.Exporter
	if cfg.Metrics.Addr != "" {
		exporter = rec.StartHTTP(cfg.Metrics.Addr)
	}

	// Отмена по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(ctx, cfg, rec)
	if err != nil {
		logging.Error("❌ Ошибка создания мира: %v", err)
		os.Exit(1)
	}

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ Цикл симуляции остановлен: %v", err)
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.Close(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка сохранения мира: %v", err)
	}
	if err := exporter.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки /metrics: %v", err)
	}
	logging.Info("👋 tile-world остановлен")
}
