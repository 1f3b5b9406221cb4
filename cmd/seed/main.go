// Command seed populates a development database with demo data.
package main

import (
	"flag"
	"log"

	"github.com/cli3338198/warbler/internal/config"
	"github.com/cli3338198/warbler/internal/database"
	"github.com/cli3338198/warbler/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.MessagesPerUser, "messages", opts.MessagesPerUser, "messages per user")
	flag.IntVar(&opts.AvgFollows, "follows", opts.AvgFollows, "average follows per user")
	flag.IntVar(&opts.AvgLikes, "likes", opts.AvgLikes, "average likes per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
