package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/zhouzirui/care-companion/backend/internal/config"
	"github.com/zhouzirui/care-companion/backend/internal/handler/chat"
	residentHandler "github.com/zhouzirui/care-companion/backend/internal/handler/resident"
	"github.com/zhouzirui/care-companion/backend/internal/handler/stream"
	"github.com/zhouzirui/care-companion/backend/internal/handler/ws"
	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	"github.com/zhouzirui/care-companion/backend/internal/service/assistant"
	chatService "github.com/zhouzirui/care-companion/backend/internal/service/chat"
	"github.com/zhouzirui/care-companion/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, residents resident.Store, chatSvc *chatService.Service, assistantSvc *assistant.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(newCORS(cfg.CORS).Handler)

	residentH := residentHandler.New(residents)
	chatH := chat.New(chatSvc, assistantSvc)
	streamH := stream.New(assistantSvc, chatSvc)
	wsH := ws.New(assistantSvc, chatSvc, residents, ws.Config{
		PingInterval: cfg.WebSocket.PingInterval,
		PongWait:     cfg.WebSocket.PongWait,
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		residentH.RegisterRoutes(api)
		chatH.RegisterRoutes(api)
		streamH.RegisterRoutes(api)
		wsH.RegisterRoutes(api)
	})

	return r
}

func newCORS(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: cfg.AllowCredentials,
	})
}
