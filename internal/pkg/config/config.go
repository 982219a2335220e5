package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_sec"`
}

// CacheConfig 本地事件缓存配置
type CacheConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// AnalyticsConfig 分析结果库配置
type AnalyticsConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig 完成通知配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// AnalysisConfig 分析参数配置
type AnalysisConfig struct {
	Timezone      string `mapstructure:"timezone"`
	MinGPSEvents  int    `mapstructure:"min_gps_events"`
	MaxConcurrent int    `mapstructure:"max_concurrent_users"`
}

// SchedulerConfig 每日调度配置
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	RunAt   string `mapstructure:"run_at"` // HH:MM，本地时区
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("METRON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理环境变量占位符
	cfg.Analytics.DSN = expandEnv(cfg.Analytics.DSN)

	// 处理相对路径
	cfg.Cache.DBPath = resolvePath(cfg.Cache.DBPath)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Analysis.Timezone); err != nil {
		return fmt.Errorf("无效的时区 %q: %w", c.Analysis.Timezone, err)
	}
	if c.Scheduler.Enabled {
		if _, err := time.Parse("15:04", c.Scheduler.RunAt); err != nil {
			return fmt.Errorf("无效的调度时间 %q: %w", c.Scheduler.RunAt, err)
		}
	}
	if c.Analysis.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent_users 必须大于 0")
	}
	return nil
}

// Location 返回分析所用的时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "metron-server")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout_sec", 10)

	// Cache
	v.SetDefault("cache.db_path", "./data/metron.db")

	// Analytics
	v.SetDefault("analytics.dsn", "${METRON_ANALYTICS_DSN}")

	// Kafka
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "metron.analysis.completed")

	// Analysis
	v.SetDefault("analysis.timezone", "Europe/Athens")
	v.SetDefault("analysis.min_gps_events", 60)
	v.SetDefault("analysis.max_concurrent_users", 4)

	// Scheduler
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.run_at", "17:59")
}

// expandEnv 展开环境变量占位符 ${VAR}
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return s
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
