package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/app"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/authpw"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/compose"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/config"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/llm"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/search"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/session"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)

	var sessions app.SessionStore
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using PostgreSQL for refresh token storage")
		sessions = session.NewPostgresStore(dataStore)
	}

	if cfg.OpenRouterAPIKey == "" {
		log.Printf("WARNING: OPENROUTER_API_KEY not set, generation falls back to placeholders")
	}
	generator := llm.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	composer := compose.NewService(generator)

	service := app.NewService(app.ServiceConfig{
		Store:           dataStore,
		Sessions:        sessions,
		Passwords:       authpw.NewService(dataStore),
		Composer:        composer,
		Search:          searchService,
		JWTSecret:       cfg.JWTSecret,
		AccessTTL:       cfg.AccessTTL,
		RefreshTTL:      cfg.RefreshTTL,
		GenerateTimeout: cfg.GenerateTimeout,
	})

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
