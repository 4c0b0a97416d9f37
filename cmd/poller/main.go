package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"licitaradar/internal/config"
	"licitaradar/internal/db"
	"licitaradar/internal/logger"
	"licitaradar/internal/notify"
	gormrepository "licitaradar/internal/repository/gorm"
	"licitaradar/internal/service"
)

// Standalone alert poller for deployments that keep delivery out of the API
// process.
func main() {
	cfgPath := os.Getenv("LR_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("LR_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Warn("invalid app timezone, falling back to UTC", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
		loc = time.UTC
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	store := gormrepository.New(dbConn.Gorm)
	dispatcher := &notify.Router{
		Email: &notify.EmailDispatcher{
			Sender: &notify.SMTPSender{
				Addr:     cfg.Email.SMTPAddr,
				Username: cfg.Email.Username,
				Password: cfg.Email.Password,
				From:     cfg.Email.From,
			},
		},
		Webhook: &notify.WebhookDispatcher{
			HTTPClient: &http.Client{Timeout: cfg.Webhook.Timeout},
		},
	}
	alertService := &service.AlertService{
		Repo:       store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Alerts,
		Location:   loc,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("alert poller starting", zap.Duration("interval", cfg.Alerts.PollInterval))
	if err := alertService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("alert poller stopped", zap.Error(err))
	}
	logger.Info("alert poller exited")
}
