package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"materna.org/internal/audit"
	"materna.org/internal/httpapi"
	"materna.org/internal/maternity"
	"materna.org/internal/obs"
	"materna.org/internal/rbac"
	"materna.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("MATERNA_COMMIT"))

	dsn := os.Getenv("MATERNA_PG_DSN")
	if dsn == "" {
		log.Fatal("missing MATERNA_PG_DSN")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	recorder := audit.NewRecorder(store)
	catalog := rbac.NewCatalog(store)
	resolver := rbac.NewShiftWindowResolver(store)
	guard := rbac.NewGuard(catalog, resolver, recorder)

	rbacSvc, err := rbac.NewService(store, store, store, store)
	if err != nil {
		log.Fatalf("rbac service: %v", err)
	}
	deliveries := maternity.NewService(store)

	api := httpapi.New(httpapi.Config{
		Ready:      store,
		Version:    version,
		Guard:      guard,
		Recorder:   recorder,
		RBAC:       rbacSvc,
		Deliveries: deliveries,
	})

	addr := os.Getenv("MATERNA_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.RateLimit(api.Handler(), 50, 25),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting materna-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
