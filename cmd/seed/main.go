// Command main runs the database seeder for Ripple.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ripple/internal/bootstrap"
	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/seed"
	"ripple/internal/social"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	follows := flag.Int("follows", 5, "Approximate follows per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GraphConnectTimeoutDuration())
	rt, err := bootstrap.InitRuntime(ctx, cfg, middleware.Logger)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	socialService := social.NewService(rt.Graph, middleware.Logger)
	seeder := seed.NewSeeder(rt.DB, socialService)

	runCtx, cancelRun := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancelRun()

	if err := seeder.Run(runCtx, seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		FollowsPerUser: *follows,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	rt.Close(context.Background())
	log.Println("Seeding complete")
}
