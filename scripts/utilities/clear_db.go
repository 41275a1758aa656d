//go:build ignore

// clear_db empties the configured store. Run with: go run scripts/utilities/clear_db.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/database"
)

var tables = []string{"viral_posts", "generated_history", "activity_logs"}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.Connect(ctx, cfg.Store.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			log.Fatalf("failed to connect: %v", err)
		}
		defer db.Close()

		for _, table := range tables {
			fmt.Printf("Truncating %s\n", table)
			if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
				log.Fatalf("failed to truncate %s: %v", table, err)
			}
		}

	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.Store.MongoURI, 10*time.Second)
		if err != nil {
			log.Fatalf("failed to connect: %v", err)
		}
		defer client.Disconnect(context.Background())

		db := client.Database(cfg.Store.MongoDatabase)
		for _, coll := range tables {
			fmt.Printf("Dropping %s.%s\n", cfg.Store.MongoDatabase, coll)
			if err := db.Collection(coll).Drop(ctx); err != nil {
				log.Fatalf("failed to drop %s: %v", coll, err)
			}
		}

	default:
		log.Fatalf("nothing to clear for store driver %q", cfg.Store.Driver)
	}

	fmt.Println("Store cleared")
}
