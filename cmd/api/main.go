package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/care-companion/backend/internal/config"
	"github.com/zhouzirui/care-companion/backend/internal/handler"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	"github.com/zhouzirui/care-companion/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	residentStore := resident.NewMemoryStore(resident.Seed())
	if _, ok := residentStore.FindByID(cfg.Assistant.DefaultResidentID); !ok {
		log.Printf("warning: default resident %q is not in the seed list", cfg.Assistant.DefaultResidentID)
	}

	chatService := chat.NewService()
	assistantService, err := assistant.NewService(ctx, chatService, residentStore, assistant.Config{
		ReplyDelay:        cfg.Assistant.ReplyDelay,
		DefaultResidentID: cfg.Assistant.DefaultResidentID,
	})
	if err != nil {
		log.Fatalf("failed to initialize assistant service: %v", err)
	}
	log.Printf("assistant ready, reply delay %s", cfg.Assistant.ReplyDelay)

	router := handler.NewRouter(cfg, residentStore, chatService, assistantService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Care companion backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
