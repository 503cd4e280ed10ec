package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contentkit/studio/internal/ai"
	"github.com/contentkit/studio/internal/api"
	"github.com/contentkit/studio/internal/artifact"
	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/eventbus"
	"github.com/contentkit/studio/internal/gateway"
	"github.com/contentkit/studio/internal/roster"
	"github.com/contentkit/studio/internal/search"
	"github.com/contentkit/studio/internal/state"
	"github.com/contentkit/studio/internal/syncer"
	"github.com/contentkit/studio/internal/web"
	"github.com/contentkit/studio/internal/workflow"
)

func main() {
	cfg := config.Load()
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	db, err := state.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := state.NewStore(db)
	artifacts := artifact.NewStore(db)
	bus := eventbus.NewBus(db)

	var llm ai.Completer
	if cfg.LLMModel != "" && cfg.LLMAPIKey != "" {
		client, err := ai.NewClient(ai.Config{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			APIKey:   cfg.LLMAPIKey,
		})
		if err != nil {
			log.Printf("LLM disabled: %v", err)
		} else {
			llm = client
		}
	}

	var provider search.Provider
	if cfg.TavilyAPIKey != "" {
		provider = search.NewTavilyClient(cfg.TavilyAPIKey)
	}

	set := roster.NewSet(llm, provider, nil, nil)
	gw := &gateway.Gateway{
		App:       cfg.AppName,
		User:      cfg.DefaultUser,
		Store:     store,
		Artifacts: artifacts,
		Bus:       bus,
		Roster:    set,
	}
	stateSyncer := syncer.New(cfg.AppName, cfg.DefaultUser, store)

	apiServer := &api.Server{
		App:       cfg.AppName,
		User:      cfg.DefaultUser,
		Store:     store,
		Artifacts: artifacts,
		Bus:       bus,
		Gateway:   gw,
		Syncer:    stateSyncer,
		Workflow:  workflow.NewRegistry(),
		StartedAt: time.Now(),
	}
	webServer := &web.Server{Dir: cfg.WebDir}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer.Handler())
	mux.Handle("/", webServer.Handler())

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Handler:           loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return serverCtx
		},
	}

	go func() {
		log.Printf("studiod listening on %s", listener.Addr())
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	serverCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	_ = httpServer.Close()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
