package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	pgrepo "github.com/velmark/storefront/internal/adapters/db/postgres"
	redisrepo "github.com/velmark/storefront/internal/adapters/db/redis"
	transport "github.com/velmark/storefront/internal/adapters/transport/http"
	"github.com/velmark/storefront/internal/app/auth/jwt"
	authsvc "github.com/velmark/storefront/internal/app/auth/service"
	catalogsvc "github.com/velmark/storefront/internal/app/catalog/service"
	"github.com/velmark/storefront/internal/infra/config"
	lg "github.com/velmark/storefront/internal/infra/log"
	"github.com/velmark/storefront/internal/infra/migrate"
	"github.com/velmark/storefront/internal/infra/seed"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := validator.New()
	_ = validate.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		var hasUpper, hasDigit bool
		for _, r := range pwd {
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		return utf8.RuneCountInString(pwd) >= 8 && hasUpper && hasDigit
	})

	userRepo := pgrepo.NewUserRepo(db)
	productRepo := pgrepo.NewProductRepo(db)
	orderRepo := pgrepo.NewOrderRepo(db)
	tokenRepo := redisrepo.NewTokenRepo(redisCli)

	tokens, err := jwt.NewService(cfg)
	if err != nil {
		zapLog.Fatal("failed to init token service", zap.Error(err))
	}

	auth := authsvc.New(userRepo, tokenRepo, tokens, cfg, validate)
	catalog := catalogsvc.New(productRepo, orderRepo, validate)

	if err := seed.EnsureAdmin(context.Background(), userRepo, cfg, zapLog); err != nil {
		zapLog.Fatal("seed admin user", zap.Error(err))
	}

	router := transport.NewRouter(cfg, zapLog, auth, catalog)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
