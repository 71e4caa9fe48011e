package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/atomhq/atom"
	"github.com/atomhq/atom/gateway"
	"github.com/atomhq/atom/policy"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("atom: %v", err)
	}
}

func run() error {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	config := atom.DefaultConfig()
	if workers := envInt("ATOM_WORKERS"); workers > 0 {
		config.Processor.WorkerCount = workers
	}
	if retries, ok := os.LookupEnv("ATOM_MAX_RETRIES"); ok {
		value, err := strconv.Atoi(retries)
		if err != nil {
			return fmt.Errorf("invalid ATOM_MAX_RETRIES: %w", err)
		}
		config.Processor.MaxRetries = value
	}
	if delay := envDuration("ATOM_RETRY_DELAY"); delay > 0 {
		config.Processor.RetryDelay = delay
	}
	config.CatalogBaseURL = os.Getenv("ATOM_CATALOG_URL")
	config.ReportBaseURL = os.Getenv("ATOM_REPORT_URL")

	options := []atom.Option{atom.WithConfig(config)}
	if mode := os.Getenv("ATOM_POLICY_MODE"); mode != "" {
		options = append(options, atom.WithPolicy(&policy.Policy{
			Mode:     mode,
			Maturity: policy.ParseLevel(os.Getenv("ATOM_MATURITY")),
		}))
	}

	service := atom.New(options...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting ATOM ...")
	log.Printf("Workers: %d", config.Processor.WorkerCount)
	if config.CatalogBaseURL != "" {
		log.Printf("Catalog base URL: %s", config.CatalogBaseURL)
	}
	if name := os.Getenv("ATOM_CATALOG"); name != "" {
		if _, err := service.UseCatalog(ctx, name); err != nil {
			return fmt.Errorf("failed to load catalog %q: %w", name, err)
		}
		log.Printf("Catalog: %s", name)
	}

	runtime := service.Runtime()
	if err := runtime.Start(ctx); err != nil {
		return err
	}
	defer runtime.Shutdown(context.Background())

	addr := os.Getenv("ATOM_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := gateway.New(service, addr)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Gateway listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serveErr:
		return err
	}
}

func envInt(key string) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return value
}

func envDuration(key string) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return value
}
