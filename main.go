package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	config "github.com/ZisanUlHaque/RedHope-Server/config"
	controllers "github.com/ZisanUlHaque/RedHope-Server/controllers"
	middleware "github.com/ZisanUlHaque/RedHope-Server/middleware"
	mq "github.com/ZisanUlHaque/RedHope-Server/mq"
	payments "github.com/ZisanUlHaque/RedHope-Server/payments"
	routes "github.com/ZisanUlHaque/RedHope-Server/routes"
	services "github.com/ZisanUlHaque/RedHope-Server/services"
	store "github.com/ZisanUlHaque/RedHope-Server/store"
	utils "github.com/ZisanUlHaque/RedHope-Server/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Mongo ---
	if err := cfg.ConnectMongo(ctx); err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cfg.MongoClient.Disconnect(dctx)
	}()

	db := cfg.Database()
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	requestStore := store.NewRequestStore(db, cfg.StoreTimeout)
	fundingStore := store.NewFundingStore(db, cfg.StoreTimeout)
	userStore := store.NewUserStore(db, cfg.StoreTimeout)

	// --- Events (optional) ---
	var publisher *mq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = mq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		slog.Info("publishing domain events", "exchange", cfg.EventsExchange)
	}

	// --- Images (optional) ---
	var images controllers.ImageStore
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, utils.AvatarFolder)
		if err != nil {
			return err
		}
		images = cld
	}

	stripe := payments.NewStripe(cfg.StripeSecret, cfg.StripeWebhookSecret)
	users := services.NewUserService(userStore)

	// --- HTTP ---
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(cfg.CORSOrigins)))

	routes.SetupRoutes(r, routes.Deps{
		Verifier: middleware.NewJWTVerifier(cfg.JWTSecret),
		Users:    users,
		Requests: services.NewRequestService(requestStore, publisher, cfg.StrictStatusTransitions),
		Fundings: services.NewFundingService(fundingStore, stripe, publisher, services.CheckoutConfig{
			Currency:   cfg.FundingCurrency,
			SiteDomain: cfg.SiteDomain,
		}),
		Stats:    services.NewStatsService(userStore, fundingStore, requestStore),
		Webhooks: stripe,
		Images:   images,
		DB:       cfg.MongoClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "db", cfg.DBName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "If-None-Match")
	c.ExposeHeaders = []string{"ETag", "Last-Modified", middleware.HeaderRequestID}
	return c
}
