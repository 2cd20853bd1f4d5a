package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"checkup-reservation/internal/auth"
	"checkup-reservation/internal/config"
	apphttp "checkup-reservation/internal/http"
	"checkup-reservation/internal/metrics"
	"checkup-reservation/internal/repository"
	"checkup-reservation/internal/repository/postgres"
	"checkup-reservation/internal/repository/sqlite"
	"checkup-reservation/internal/service"
	"checkup-reservation/internal/storage"
)

type stores struct {
	users        repository.UserRepository
	reservations repository.ReservationRepository
	close        func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer st.close()

	if err := st.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := st.reservations.Init(ctx); err != nil {
		logger.Fatalf("init reservation repository: %v", err)
	}

	userService := service.NewUserService(st.users)
	reservationService := service.NewReservationService(st.reservations, st.users)

	if cfg.Auth.Admin.EmployeeNo != "" {
		created, err := userService.EnsureAdmin(ctx, cfg.Auth.Admin.EmployeeNo, cfg.Auth.Admin.Name, cfg.Auth.Admin.Email, cfg.Auth.Admin.Password)
		if err != nil {
			logger.Fatalf("ensure admin: %v", err)
		}
		if created {
			logger.Infof("created admin account %s", cfg.Auth.Admin.EmployeeNo)
		}
	}

	rosterService, err := buildRosterService(ctx, cfg, st.reservations, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if cfg.Metrics.Enabled {
		metrics.Register()
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	handler := apphttp.NewHandler(userService, reservationService, rosterService, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        postgres.NewUserRepository(pool),
			reservations: postgres.NewReservationRepository(pool),
			close:        pool.Close,
		}, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:        sqlite.NewUserRepository(db),
			reservations: sqlite.NewReservationRepository(db),
			close:        func() { db.Close() },
		}, nil
	}
}

// buildRosterService returns nil when no bucket is configured; the export routes then answer 503.
func buildRosterService(ctx context.Context, cfg config.Config, reservations repository.ReservationRepository, logger *logrus.Logger) (service.RosterService, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not set, roster export disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return service.NewRosterService(reservations, storage.NewS3Service(client), service.RosterConfig{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
	}), nil
}
