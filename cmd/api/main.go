package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"authcore/internal/auth"
	"authcore/internal/config"
	"authcore/internal/httpserver"
	"authcore/internal/logger"
	"authcore/internal/models"
	"authcore/internal/session"
	"authcore/internal/store"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		lg.Fatalw("JWT_SECRET is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.LoginAttempt{},
		&models.Session{}, &models.AuditEntry{}); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	users := store.NewUserStore(db, lg)
	sessions := store.NewSessionStore(db, lg, cfg.SessionLifetime, cfg.TokenBytes)
	roles := store.NewRoleStore(db, lg)
	audit := store.NewAuditStore(db, lg)

	var attempts store.AttemptLedger
	var dbAttempts *store.AttemptStore
	if cfg.AttemptBackend == "redis" {
		if cfg.RedisAddr == "" {
			lg.Fatalw("REDIS_ADDR is empty with ATTEMPT_BACKEND=redis")
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		attempts = store.NewRedisAttemptStore(rdb, lg, cfg.LockoutThreshold, cfg.AttemptWindow, cfg.LockoutDuration)
		lg.Infow("attempt ledger backend", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		dbAttempts = store.NewAttemptStore(db, lg, cfg.LockoutThreshold, cfg.AttemptWindow, cfg.LockoutDuration)
		attempts = dbAttempts
	}

	if err := roles.Seed(context.Background()); err != nil {
		lg.Fatalw("role seed failed", "error", err)
	}

	sweeper := store.NewSweeper(attempts, sessions, audit, lg, cfg.AttemptRetention, cfg.AuditRetention)
	go runSweeps(sweeper)

	deps := httpserver.Deps{
		Cfg:      cfg,
		Lg:       lg,
		Codec:    auth.NewCookieCodec(cfg.JWTSecret),
		Auth:     auth.NewService(users, attempts, lg),
		Reg:      auth.NewRegistrar(users, roles, audit, lg),
		Orch:     session.NewOrchestrator(sessions, roles, audit, users, lg),
		Users:    users,
		Audit:    audit,
		Roles:    roles,
		Sweeper:  sweeper,
		Attempts: dbAttempts,
		Sessions: sessions,
	}
	router := httpserver.NewRouter(deps)

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

// runSweeps is the periodic trigger for the retention sweeps. The sweeps
// themselves are idempotent deletes, safe alongside live traffic.
func runSweeps(sweeper *store.Sweeper) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		sweeper.Run(ctx)
		cancel()
	}
}
