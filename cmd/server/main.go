// cmd/server is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/database"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/handler"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/notify"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/repository"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/service"
)

func main() {
	_ = godotenv.Load()

	log := newLogger()
	ctx := context.Background()

	// ── 1. Connect to PostgreSQL and apply migrations ─────────────────────
	pool, err := database.NewPool(ctx, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := database.Migrate(ctx, pool, getEnv("MIGRATIONS_DIR", "migrations"), &log); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	clk := clock.Real{}
	classRepo := repository.NewClassRepository(pool, clk)
	bookingRepo := repository.NewBookingRepository(pool, clk)

	// Notification is optional: without a broker URL bookings still work,
	// they just don't produce confirmation email.
	var notifier service.Notifier
	var worker *notify.Worker
	if url := os.Getenv("RABBIT_URL"); url != "" {
		client, err := notify.NewClient(
			url,
			getEnv("RABBIT_EXCHANGE", "booking.confirmed"),
			getEnv("RABBIT_QUEUE", "booking-confirmations"),
			&log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		defer client.Close()
		notifier = client

		mailer := notify.NewMailer(
			os.Getenv("SMTP_HOST"),
			getEnv("SMTP_PORT", "587"),
			os.Getenv("SMTP_FROM"),
			os.Getenv("SMTP_PASSWORD"),
			&log,
		)
		worker = notify.NewWorker(client, mailer, &log)
		worker.Start(ctx)
	}

	catalogSvc := service.NewCatalogService(classRepo, clk, &log)
	bookingSvc := service.NewBookingService(bookingRepo, notifier, &log)
	bookingHandler := handler.NewBookingHandler(catalogSvc, bookingSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(&log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", bookingHandler.Root)
	r.Get("/health", handler.HealthCheck)
	r.Get("/classes", bookingHandler.ListClasses)
	r.Post("/classes", bookingHandler.CreateClass)
	r.Post("/book", bookingHandler.Book)
	r.Get("/bookings", bookingHandler.ListBookings)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	if worker != nil {
		worker.Stop()
	}
	log.Info().Msg("server stopped")
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "fitness-booking-api").Logger()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
