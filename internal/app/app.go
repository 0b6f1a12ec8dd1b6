package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MaxGalant/auth-api/config"
	googleadapter "github.com/MaxGalant/auth-api/internal/adapters/google"
	httpadapter "github.com/MaxGalant/auth-api/internal/adapters/http"
	apiv1 "github.com/MaxGalant/auth-api/internal/adapters/http/api/v1"
	handlers "github.com/MaxGalant/auth-api/internal/adapters/http/api/v1/handlers"
	authmw "github.com/MaxGalant/auth-api/internal/adapters/http/middleware"
	mailadapter "github.com/MaxGalant/auth-api/internal/adapters/mail"
	natsadapter "github.com/MaxGalant/auth-api/internal/adapters/nats"
	repo "github.com/MaxGalant/auth-api/internal/adapters/postgres"
	"github.com/MaxGalant/auth-api/internal/domain"
	"github.com/MaxGalant/auth-api/internal/usecase"
	pkglog "github.com/MaxGalant/auth-api/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	appLogger := pkglog.With(pkglog.New(cfg.AppEnv), pkglog.Fields{"service": cfg.AppName})

	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey so services can map them to conflicts.
	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		appLogger.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats connect failed")
	}

	users := repo.NewUserRepository(db)
	hasher := usecase.NewPasswordHasher()
	otp := usecase.NewOTPGenerator(cfg.OTPTTL)
	issuer, err := usecase.NewTokenIssuer(cfg)
	if err != nil {
		return nil, err
	}
	mailer := mailadapter.New(cfg)
	googleClient := googleadapter.NewClient(cfg)

	var publisher natsadapter.EventPublisher
	if nc != nil {
		publisher = natsadapter.NewEventPublisher(nc, cfg.NATSUserCreatedSubject)
	}

	authService := usecase.NewAuthService(cfg, appLogger, repo.NewTxManager(db), users, hasher, otp, issuer, mailer, publisher)
	userService := usecase.NewUserService(appLogger, users, hasher)

	authHandler := handlers.NewAuthHandler(authService, googleClient)
	userHandler := handlers.NewUserHandler(userService)
	authMW := authmw.NewAuthMiddleware(issuer, users)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(authHandler, userHandler, authMW.AccessGuard, authMW.RefreshGuard))

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(issuer)
		if err := verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName); err != nil {
			appLogger.Warn().Err(err).Str("subject", cfg.NATSVerifySubject).Msg("verify subscription failed")
		}
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: appLogger, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
