package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Cron    CronConfig    `mapstructure:"cron"`
	PNCP    PNCPConfig    `mapstructure:"pncp"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Email   EmailConfig   `mapstructure:"email"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Timezone string `mapstructure:"timezone"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	DailySync string `mapstructure:"daily_sync"`
}

type PNCPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	PageSize  int           `mapstructure:"page_size"`
	PageDelay time.Duration `mapstructure:"page_delay"`
	ItemDelay time.Duration `mapstructure:"item_delay"`
}

type SyncConfig struct {
	Categories    []int         `mapstructure:"categories"`
	CategoryDelay time.Duration `mapstructure:"category_delay"`
}

type AlertsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	LookbackDays  int           `mapstructure:"lookback_days"`
	MaxNotices    int           `mapstructure:"max_notices"`
	PreWindowMin  int           `mapstructure:"pre_window_min"`
	PostWindowMin int           `mapstructure:"post_window_min"`
}

type EmailConfig struct {
	SMTPAddr string `mapstructure:"smtp_addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WebhookConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.timezone", "America/Sao_Paulo")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.daily_sync", "0 30 6 * * *")
	v.SetDefault("pncp.base_url", "https://pncp.gov.br/api/consulta/v1")
	v.SetDefault("pncp.timeout", "30s")
	v.SetDefault("pncp.page_size", 50)
	v.SetDefault("pncp.page_delay", "500ms")
	v.SetDefault("pncp.item_delay", "200ms")
	// The category order is a coverage heuristic, not an upstream contract:
	// the three high-volume modalidades go first so an interrupted run still
	// lands most of the day's volume.
	v.SetDefault("sync.categories", []int{6, 8, 4, 1, 2, 3, 5, 7, 9, 10, 11, 12, 13})
	v.SetDefault("sync.category_delay", "1s")
	v.SetDefault("alerts.enabled", true)
	v.SetDefault("alerts.poll_interval", "5m")
	v.SetDefault("alerts.lookback_days", 7)
	v.SetDefault("alerts.max_notices", 100)
	v.SetDefault("alerts.pre_window_min", 5)
	v.SetDefault("alerts.post_window_min", 30)
	v.SetDefault("email.smtp_addr", "localhost:587")
	v.SetDefault("email.from", "alertas@licitaradar.local")
	v.SetDefault("webhook.timeout", "10s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
