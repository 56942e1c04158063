package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"materna.org/internal/rbac"
	"materna.org/internal/store/pg"
)

// seed installs the builtin permission catalog, the clinical roles, and the
// role grants. Safe to run repeatedly; a second run reports all zeros.
func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("MATERNA_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or MATERNA_PG_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	res, err := rbac.NewSeeder(store, store, store).Run(ctx)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded: %d permissions, %d roles, %d grants", res.Permissions, res.Roles, res.Grants)
}
