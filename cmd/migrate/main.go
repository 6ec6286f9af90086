package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"chat_economy/internal/catalog"
	"chat_economy/internal/config"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/pkg/security"
	"chat_economy/internal/storage"
)

func main() {
	seed := flag.Bool("seed", false, "seed the catalog and the server settings after migrating")
	catalogPath := flag.String("catalog", config.CatalogPath, "catalog file used by -seed")
	hashKey := flag.String("hash-key", "", "print the DISPATCHER_KEY_HASH value for a dispatcher key and exit")
	flag.Parse()

	if *hashKey != "" {
		hash, err := security.HashKey(*hashKey)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(hash)
		return
	}

	l, err := logger.CreateLogger(config.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	ctx := context.Background()
	db, err := storage.NewPostgreSQL(config.DatabaseURI, l)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Println("migrations applied")

	if !*seed {
		return
	}

	items, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	if err := db.UpsertItems(ctx, items); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}
	fmt.Printf("seeded %d catalog items\n", len(items))

	if err := db.SaveSettings(ctx, config.Settings()); err != nil {
		log.Fatalf("seed settings: %v", err)
	}
	fmt.Println("seeded server settings")
}
