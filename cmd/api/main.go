package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodbridge/internal/config"
	"foodbridge/internal/middleware"
	"foodbridge/internal/modules/contribution"
	"foodbridge/internal/modules/delivery"
	"foodbridge/internal/modules/donation"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/modules/request"
	"foodbridge/pkg/notify"
	"foodbridge/pkg/payment"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	var notifier request.NotifierInterface
	if cfg.EmailSender != "" {
		ses, err := notify.NewSESService(ctx, cfg.AWSRegion, cfg.EmailSender)
		if err != nil {
			log.Printf("email notifications disabled: %v", err)
		} else {
			notifier = ses
		}
	}

	donationHandler := donation.NewHandler(donation.NewService(donation.NewRepository(pool)))
	requestHandler := request.NewHandler(request.NewService(request.NewRepository(pool), notifier))
	deliveryHandler := delivery.NewHandler(delivery.NewService(delivery.NewRepository(pool)))
	matchingHandler := matching.NewHandler(
		matching.NewService(matching.NewRepository(pool), cfg.MatchRadiusKm, cfg.MatchLimit))
	contributionHandler := contribution.NewHandler(
		contribution.NewService(contribution.NewRepository(pool), payment.NewStripeService(cfg.StripeAPIKey)))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	api := e.Group("/api", middleware.Authenticate(cfg.JWTSecret))
	donationHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	deliveryHandler.RegisterRoutes(api)
	matchingHandler.RegisterRoutes(api)
	contributionHandler.RegisterRoutes(api)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
