package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("获取可执行文件路径失败: %w", err)
	}
	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, "config", "config.yaml"), nil
}

func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("cfg 不能为空")
	}
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	payload := map[string]any{
		"app": map[string]any{
			"name":      cfg.App.Name,
			"version":   cfg.App.Version,
			"log_level": cfg.App.LogLevel,
		},
		"server": map[string]any{
			"addr":                 cfg.Server.Addr,
			"shutdown_timeout_sec": cfg.Server.ShutdownTimeout,
		},
		"cache": map[string]any{
			"db_path": cfg.Cache.DBPath,
		},
		"analytics": map[string]any{
			"dsn": cfg.Analytics.DSN,
		},
		"kafka": map[string]any{
			"enabled": cfg.Kafka.Enabled,
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.Topic,
		},
		"analysis": map[string]any{
			"timezone":             cfg.Analysis.Timezone,
			"min_gps_events":       cfg.Analysis.MinGPSEvents,
			"max_concurrent_users": cfg.Analysis.MaxConcurrent,
		},
		"scheduler": map[string]any{
			"enabled": cfg.Scheduler.Enabled,
			"run_at":  cfg.Scheduler.RunAt,
		},
	}

	b, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}
