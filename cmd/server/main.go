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

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"licitaradar/internal/client/pncp"
	"licitaradar/internal/config"
	cronrunner "licitaradar/internal/cron"
	"licitaradar/internal/db"
	"licitaradar/internal/handler"
	"licitaradar/internal/logger"
	"licitaradar/internal/notify"
	gormrepository "licitaradar/internal/repository/gorm"
	"licitaradar/internal/service"

	_ "licitaradar/docs"
)

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

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	pncpHTTP := &http.Client{Timeout: cfg.PNCP.Timeout}
	pncpClient := pncp.NewClient(pncpHTTP, cfg.PNCP.BaseURL)
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
	syncService := &service.SyncService{
		Repo:   store,
		Client: pncpClient,
		Enricher: &service.Enricher{
			Client:    pncpClient,
			Logger:    logger,
			ItemDelay: cfg.PNCP.ItemDelay,
		},
		Alerts:   alertService,
		Logger:   logger,
		Config:   cfg.Sync,
		PNCP:     cfg.PNCP,
		Location: loc,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	syncHandler := &handler.SyncHandler{Service: syncService, Logger: logger}
	syncHandler.Register(engine)
	noticeHandler := &handler.NoticeHandler{Repo: store}
	noticeHandler.Register(engine)
	subscriptionHandler := &handler.SubscriptionHandler{Repo: store}
	subscriptionHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx, loc)
		_, err = cronRunner.Add(cfg.Cron.DailySync, func(jobCtx context.Context) {
			result, err := syncService.Sync(jobCtx, service.SyncOptions{})
			if err != nil {
				logger.Warn("cron daily sync failed", zap.Error(err))
				return
			}
			logger.Info("cron daily sync ok",
				zap.String("date", result.Date),
				zap.Int("found", result.TotalFound),
				zap.Int("saved", result.TotalSaved),
				zap.Int("skipped", result.TotalSkipped),
				zap.Int("categories_failed", result.CategoriesFailed),
				zap.Int("alerts_sent", result.AlertsSent),
			)
		})
		if err != nil {
			logger.Warn("cron register daily sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.Alerts.Enabled {
		go func() {
			if err := alertService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("alert poller stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
