package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的全部配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	SessionSecret     string
	GinMode           string
	SuperRootUserName string
	SuperRootPassword string
	CORSOrigins       []string

	Site      SiteConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	CrossPost CrossPostConfig
	Tasks     TasksConfig
	Telemetry TelemetryConfig
}

// SiteConfig describes the public identity used for canonical URLs and structured data.
type SiteConfig struct {
	Name    string
	BaseURL string
	LogoURL string
}

// DatabaseConfig selects the gorm dialector and its connection string.
type DatabaseConfig struct {
	Driver   string // sqlite | postgres | mysql
	Path     string // sqlite only
	DSN      string
	Replicas []string
}

type RedisConfig struct {
	URL     string
	Channel string
}

// Enabled reports whether view updates should be relayed through Redis.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// CrossPostConfig 控制文章发布后向外部平台的同步。
type CrossPostConfig struct {
	Enabled     bool
	Brokers     []string
	TopicPrefix string
	Platforms   []string
	Timeout     time.Duration
}

type TasksConfig struct {
	ReconcileSchedule string
}

type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

var supportedDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"mysql":    true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("session_secret", "inkwell-dev-secret")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("site_name", "Inkwell")
	v.SetDefault("site_base_url", "http://localhost:8080")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", "inkwell.db")
	v.SetDefault("redis_channel", "inkwell:post-views")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("crosspost_enabled", false)
	v.SetDefault("crosspost_topic_prefix", "inkwell.crosspost")
	v.SetDefault("crosspost_platforms", "facebook,twitter,linkedin")
	v.SetDefault("crosspost_timeout", "10s")
	v.SetDefault("reconcile_schedule", "@every 15m")
	v.SetDefault("telemetry_enabled", false)
	v.SetDefault("prometheus_enabled", false)
	v.SetDefault("service_name", "inkwell")
}

// Load 读取配置：默认值 < 配置文件 < 环境变量。
// path 为空时在当前目录查找 inkwell.yaml，找不到不视为错误。
func Load(path string) (AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("inkwell")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return AppConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	port := getString(v, "port")
	listenAddr := getString(v, "listen_addr")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	cfg := AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		SessionSecret:     getString(v, "session_secret"),
		GinMode:           getString(v, "gin_mode"),
		SuperRootUserName: getString(v, "super_root_user_name"),
		SuperRootPassword: getString(v, "super_root_password"),
		CORSOrigins:       getList(v, "cors_allowed_origins"),
		Site: SiteConfig{
			Name:    getString(v, "site_name"),
			BaseURL: strings.TrimRight(getString(v, "site_base_url"), "/"),
			LogoURL: getString(v, "site_logo_url"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getString(v, "database_driver")),
			Path:     getString(v, "database_path"),
			DSN:      getString(v, "database_dsn"),
			Replicas: getList(v, "database_replicas"),
		},
		Redis: RedisConfig{
			URL:     getString(v, "redis_url"),
			Channel: getString(v, "redis_channel"),
		},
		Log: LogConfig{
			Level:  getString(v, "log_level"),
			Format: getString(v, "log_format"),
		},
		CrossPost: CrossPostConfig{
			Enabled:     v.GetBool("crosspost_enabled"),
			Brokers:     getList(v, "kafka_brokers"),
			TopicPrefix: getString(v, "crosspost_topic_prefix"),
			Platforms:   getList(v, "crosspost_platforms"),
			Timeout:     v.GetDuration("crosspost_timeout"),
		},
		Tasks: TasksConfig{
			ReconcileSchedule: getString(v, "reconcile_schedule"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry_enabled"),
			JaegerURL:         getString(v, "jaeger_url"),
			PrometheusEnabled: v.GetBool("prometheus_enabled"),
			ServiceName:       getString(v, "service_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c AppConfig) Validate() error {
	if !supportedDrivers[c.Database.Driver] {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "sqlite" && c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required for driver %s", c.Database.Driver)
	}
	if c.SessionSecret == "" {
		return errors.New("session secret must not be empty")
	}
	switch c.GinMode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("unknown gin mode %q", c.GinMode)
	}
	if c.CrossPost.Enabled && len(c.CrossPost.Brokers) == 0 {
		return errors.New("crosspost enabled but no kafka brokers configured")
	}
	return nil
}

func getString(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// getList accepts both YAML sequences and comma separated env values.
func getList(v *viper.Viper, key string) []string {
	var raw []string
	switch value := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(value, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
