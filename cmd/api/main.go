package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	_ "github.com/swediversity/swediversity-api/api/swagger"
	"github.com/swediversity/swediversity-api/internal/handler"
	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/internal/prereq"
	"github.com/swediversity/swediversity-api/internal/repository"
	"github.com/swediversity/swediversity-api/internal/router"
	"github.com/swediversity/swediversity-api/internal/search"
	"github.com/swediversity/swediversity-api/internal/service"
	"github.com/swediversity/swediversity-api/pkg/cache"
	"github.com/swediversity/swediversity-api/pkg/config"
	"github.com/swediversity/swediversity-api/pkg/database"
	"github.com/swediversity/swediversity-api/pkg/jobs"
	"github.com/swediversity/swediversity-api/pkg/logger"
	"github.com/swediversity/swediversity-api/pkg/mailer"
)

// @title Swediversity API
// @version 1.0.0
// @description University and study programme information service for prospective students in Sweden
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Search results and exchange rates fall back to direct lookups.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	catalog, err := prereq.NewCatalog()
	if err != nil {
		logr.Sugar().Fatalw("failed to build prerequisite catalog", "error", err)
	}
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	programRepo := repository.NewProgramRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	postRepo := repository.NewPostRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	resetRepo := repository.NewResetTokenRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	smtp := mailer.NewSMTPMailer(cfg.Mail)
	mailQueue := jobs.NewQueue("mail", func(_ context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(models.ResetMail)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return smtp.SendResetLink(payload.Email, payload.Token)
	}, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
		Logger:     logr,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	metricsSvc := service.NewMetricsService()
	statsSvc := service.NewStatsService(statsRepo, metricsSvc, logr)
	searchSvc := service.NewSearchService(
		universityRepo,
		programRepo,
		search.NewMatcher(cfg.Search.Threshold),
		cacheRepo,
		cfg.Search.CacheTTL,
		metricsSvc,
		logr,
	)
	exchangeSvc := service.NewExchangeService(cacheRepo, cfg.Exchange, logr)

	authSvc := service.NewAuthService(userRepo, resetRepo, consentRepo, mailQueue, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		ResetTokenExpiry:  cfg.JWT.ResetExpiry,
		Issuer:            "swediversity-api",
	})
	userSvc := service.NewUserService(userRepo, catalog, logr)
	universitySvc := service.NewUniversityService(universityRepo, searchSvc, validate, logr)
	programSvc := service.NewProgramService(programRepo, catalog, exchangeSvc, searchSvc, validate, logr)
	recordSvc := service.NewRecordService(recordRepo, statsSvc, validate, logr)
	postSvc := service.NewPostService(postRepo, validate, logr)
	consentSvc := service.NewConsentService(consentRepo, validate, logr)

	if cfg.Exchange.Enabled {
		scheduler := cron.New()
		refresh := func() {
			refreshCtx, cancel := context.WithTimeout(ctx, cfg.Exchange.Timeout)
			defer cancel()
			if err := exchangeSvc.Refresh(refreshCtx); err != nil {
				logr.Warn("exchange rate refresh failed", zap.Error(err))
			}
		}
		if _, err := scheduler.AddFunc(cfg.Exchange.Schedule, refresh); err != nil {
			logr.Sugar().Fatalw("invalid exchange refresh schedule", "schedule", cfg.Exchange.Schedule, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		go refresh()
	}

	engine := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metricsSvc,

		AuthHandler:       handler.NewAuthHandler(authSvc),
		UserHandler:       handler.NewUserHandler(userSvc),
		UniversityHandler: handler.NewUniversityHandler(universitySvc, searchSvc, statsSvc),
		ProgramHandler:    handler.NewProgramHandler(programSvc, searchSvc, statsSvc),
		RecordHandler:     handler.NewRecordHandler(recordSvc, statsSvc),
		PostHandler:       handler.NewPostHandler(postSvc),
		ConsentHandler:    handler.NewConsentHandler(consentSvc),
		MetricsHandler:    handler.NewMetricsHandler(metricsSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
