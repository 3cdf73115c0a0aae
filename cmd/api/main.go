package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"photo-paywall-api/internal/client"
	"photo-paywall-api/internal/config"
	"photo-paywall-api/internal/repository"
	"photo-paywall-api/internal/server"
	"photo-paywall-api/internal/service"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	initLogger(&cfg.Log)

	db := client.InitDBClient(cfg.DatabaseURL)
	redisClient := client.InitRedisClient(cfg.RedisURL)
	mpClient := client.NewMercadoPagoClient(&cfg.MercadoPago)

	var stripeClient client.StripeClient
	if cfg.Stripe.SecretKey != "" {
		stripeClient = client.NewStripeClient(cfg.Stripe.SecretKey)
	}

	photoRepo := repository.NewPhotoRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	paymentCache := repository.NewPaymentCache(redisClient)

	checkoutService := service.NewCheckoutService(cfg, mpClient, stripeClient, photoRepo)
	reconcileService := service.NewReconcileService(db, mpClient, photoRepo, paymentRepo, paymentCache)
	photoService := service.NewPhotoService(photoRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, checkoutService, reconcileService, photoService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}

func initLogger(logCfg *config.Log) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logCfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if logCfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
