package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
	"orderconfig/internal/config"
	"orderconfig/internal/db"
	"orderconfig/internal/logging"
	"orderconfig/internal/middleware"
	"orderconfig/internal/router"
	"orderconfig/internal/session"
	"orderconfig/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	config.LoadEnv()

	log := logging.Must(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg, err := config.Load("DATABASE_URL", "JWT_SECRET")
	if err != nil {
		log.Fatal("❌ Config load failed", zap.Error(err))
	}

	ctx := context.Background()

	// ───────────────────────── DB ─────────────────────────
	pgDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("❌ Database connection failed", zap.Error(err))
	}
	defer pgDB.Close()

	// ───────────────────────── CORE REPOS ─────────────────────────
	catalogRepo := catalog.NewPostgresRepository(pgDB)
	cartStore := cart.NewPostgresStore(pgDB)

	opts := session.Options{
		Labels:      cfg.Labels,
		IdleTimeout: cfg.SessionIdleTimeout,
		Logger:      log,
	}

	// ───────────────────────── STORAGE (optional) ─────────────────────────
	if cfg.R2.Enabled() {
		r2Client, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal("❌ R2 init failed", zap.Error(err))
		}
		opts.Archive = r2Client
		log.Info("✅ Cart archive enabled", zap.String("bucket", cfg.R2.Bucket))
	} else {
		log.Info("cart archive disabled, R2 not configured")
	}

	// ───────────────────────── SERVICES ─────────────────────────
	manager := session.NewManager(catalogRepo, cartStore, opts)
	handler := session.NewHandler(manager, cfg.ValidationMessageTTL)

	// ───────────────────────── GIN ─────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Mount(r, handler, middleware.AuthMiddleware([]byte(cfg.JWTSecret), log))

	// ───────────────────────── START ─────────────────────────
	addr := ":" + cfg.Port
	log.Info("🚀 API running", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
