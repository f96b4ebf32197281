// cmd/seed populates the database with sample fitness classes for
// local development and manual testing.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ByteNikhil/fitness-class-booking-system/internal/clock"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/database"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/model"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/repository"
	"github.com/ByteNikhil/fitness-class-booking-system/internal/service"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, "migrations", &log); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	clk := clock.Real{}
	catalog := service.NewCatalogService(repository.NewClassRepository(pool, clk), clk, &log)

	now := time.Now().UTC()
	samples := []model.CreateClassRequest{
		{
			Name:        "Hatha Yoga",
			Instructor:  "Priya Sharma",
			StartTime:   now.Add(24*time.Hour + 9*time.Hour),
			TotalSlots:  15,
			Description: "Gentle yoga focusing on basic postures and breathing techniques",
		},
		{
			Name:        "Power Yoga",
			Instructor:  "Rahul Kumar",
			StartTime:   now.Add(24*time.Hour + 18*time.Hour),
			TotalSlots:  12,
			Description: "Dynamic yoga flow for strength and flexibility",
		},
		{
			Name:        "Zumba Dance Fitness",
			Instructor:  "Maria Rodriguez",
			StartTime:   now.Add(48*time.Hour + 19*time.Hour),
			TotalSlots:  20,
			Description: "High-energy dance workout with Latin music",
		},
		{
			Name:        "HIIT Training",
			Instructor:  "Alex Johnson",
			StartTime:   now.Add(72*time.Hour + 7*time.Hour),
			TotalSlots:  10,
			Description: "High-intensity interval training for maximum calorie burn",
		},
	}

	for _, req := range samples {
		cls, err := catalog.CreateClass(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("name", req.Name).Msg("seed class failed")
		}
		log.Info().Int64("class_id", cls.ID).Str("name", cls.Name).Msg("seeded class")
	}
}
