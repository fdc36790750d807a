package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/danupranata/kasirpos/internal/config"
	"github.com/danupranata/kasirpos/internal/httpx"
	"github.com/danupranata/kasirpos/internal/logger"
	"github.com/danupranata/kasirpos/internal/modules/basket"
	"github.com/danupranata/kasirpos/internal/modules/inventory"
	"github.com/danupranata/kasirpos/internal/modules/order"
	"github.com/danupranata/kasirpos/internal/modules/payment"
	"github.com/danupranata/kasirpos/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}

	logg := logger.New("kasirpos-terminal")

	// ── Push channel ────────────────────────────────────────
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal(err)
	}
	rdb := redis.NewClient(redisOpts)
	notifier := realtime.NewRedisNotifier(rdb, logg)

	// ── Backend client ──────────────────────────────────────
	backend := httpx.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIToken)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Catalog cache ───────────────────────────────────────
	inventoryService := inventory.NewService(inventory.NewBackendAPI(backend))
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 10*time.Second)
	if err := inventoryService.Refresh(warmCtx); err != nil {
		logg.Error("catalog_warmup", "starting with an empty product cache", err)
	}
	cancelWarm()

	// ── Basket & order submission ───────────────────────────
	store := basket.NewStore(basket.PriceAccumulates)
	basket.NewHandler(store, inventoryService).RegisterRoutes(router)

	submitter := order.NewSubmitter(order.NewBackendAPI(backend), cfg.MerchantID)
	order.NewHandler(submitter, store).RegisterRoutes(router)

	// ── Payment sessions ────────────────────────────────────
	paymentAPI := payment.NewBackendAPI(backend)
	payment.NewHandler(paymentAPI, notifier, logg, cfg.Payment.Timeout()).RegisterRoutes(router)

	// ── Start & shutdown ────────────────────────────────────
	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: router}

	go func() {
		logg.Info("startup", "kasirpos terminal listening on :"+cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown", "http server shutdown failed", err)
	}
	if err := notifier.Close(); err != nil {
		logg.Error("shutdown", "push channel close failed", err)
	}
	logg.Info("shutdown", "kasirpos terminal stopped")
}
