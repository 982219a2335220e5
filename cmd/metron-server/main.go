package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/metronlab/metron/internal/httpapi"
	"github.com/metronlab/metron/internal/pkg/buildinfo"
	"github.com/metronlab/metron/internal/pkg/config"
	"github.com/metronlab/metron/internal/repository"
	"github.com/metronlab/metron/internal/service"
	"github.com/metronlab/metron/internal/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "配置文件路径（缺省为可执行文件旁的 config/config.yaml）")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfgPath == "" {
		if p, err := config.DefaultConfigPath(); err == nil {
			cfgPath = p
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.App.LogLevel)

	// 首次启动时落一份配置文件，便于运维修改
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			if err := config.WriteFile(cfgPath, cfg); err != nil {
				slog.Warn("写默认配置失败", "path", cfgPath, "error", err)
			}
		}
	}

	slog.Info("Metron Server 启动中...", "name", cfg.App.Name, "version", cfg.App.Version, "build", buildinfo.Version, "commit", buildinfo.Commit)

	cache, err := repository.OpenCache(cfg.Cache.DBPath)
	if err != nil {
		slog.Error("打开本地缓存失败", "error", err)
		os.Exit(1)
	}
	defer cache.Close()
	if cache.SafeMode {
		slog.Warn("缓存处于安全模式，入库与批次将被拒绝", "reason", cache.MigrationError)
	}

	st, err := store.Open(cfg.Analytics.DSN)
	if err != nil {
		slog.Error("打开分析库失败", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	loc := cfg.Location()
	ingestor := service.NewIngestor(cache, loc)
	runner := service.NewAnalysisRunner(cache, st, loc, cfg.Analysis.MinGPSEvents)
	notifier := service.NewNotifier(cfg.Kafka)
	defer notifier.Close()
	batch := service.NewBatch(cache, runner, notifier, cfg.Analysis.MaxConcurrent, loc)

	if cfg.Scheduler.Enabled {
		sched, err := service.NewScheduler(batch, cfg.Scheduler.RunAt, loc)
		if err != nil {
			slog.Error("创建调度器失败", "error", err)
			os.Exit(1)
		}
		sched.Start(ctx)
	}

	server := httpapi.NewServer(*cfg, ingestor, batch)
	server.Start()

	slog.Info("Metron Server 已启动")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("收到退出信号", "signal", sig.String())

	cancel()
	if err := server.Shutdown(); err != nil {
		slog.Error("HTTP 优雅退出失败", "error", err)
	}
	slog.Info("Metron Server 已退出")
}
