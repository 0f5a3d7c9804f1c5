package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/dcamacho/danishop-backend/internal/config"
	"github.com/dcamacho/danishop-backend/internal/logging"
	"github.com/dcamacho/danishop-backend/internal/modules/address"
	"github.com/dcamacho/danishop-backend/internal/modules/auth"
	"github.com/dcamacho/danishop-backend/internal/modules/cart"
	"github.com/dcamacho/danishop-backend/internal/modules/catalog"
	"github.com/dcamacho/danishop-backend/internal/modules/order"
	"github.com/dcamacho/danishop-backend/internal/modules/payment"
	"github.com/dcamacho/danishop-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New()
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("database ping failed", zap.Error(err))
	}
	logger.Info("connected to postgres")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	// ── Router ──────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.JWTSecret)
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(tokens.Middleware)

	// ── Phase 1: Identity ───────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo, tokens)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Phase 2: Catalog & Cart ─────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router, auth.RequireAdmin)

	cartStore := cart.NewRedisStore(rdb)
	cartService := cart.NewService(cartStore, catalogRepo)
	cart.NewHandler(cartService).RegisterRoutes(router)

	// ── Phase 3: Orders ─────────────────────────────────────
	grants := order.NewGrants(cfg.JWTSecret)
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, cartStore, catalogRepo,
		order.NewReceipts(cfg.MediaDir), logger)
	order.NewHandler(orderService, grants).RegisterRoutes(router)

	addressRepo := address.NewPostgresRepository(db)
	address.NewHandler(address.NewService(addressRepo)).RegisterRoutes(router)

	// ── Phase 4: Payments ───────────────────────────────────
	culqi := payment.NewCulqiClient(cfg.Culqi.BaseURL, cfg.Culqi.SecretKey)
	paymentService := payment.NewService(orderRepo, culqi, cfg.Culqi.Currency, logger)
	payment.NewHandler(paymentService, grants,
		cfg.Culqi.WebhookUser, cfg.Culqi.WebhookPass, logger).RegisterRoutes(router)

	// ── Store metadata & media ──────────────────────────────
	router.Get("/api/v1/meta", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"contact_whatsapp": cfg.ContactWhatsapp})
	})
	router.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))

	// ── Start Server ────────────────────────────────────────
	logger.Info("danishop API server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
