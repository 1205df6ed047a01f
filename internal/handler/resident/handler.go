package resident

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/care-companion/backend/internal/model/resident"
	"github.com/zhouzirui/care-companion/backend/pkg/utils"
)

// Handler resident服务的HTTP处理器
type Handler struct {
	residents resident.Store
}

// New 创建resident处理器
func New(residents resident.Store) *Handler {
	return &Handler{residents: residents}
}

// RegisterRoutes 注册resident相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/residents", h.handleListResidents)
	r.Get("/suggestions", h.handleListSuggestions)
}

func (h *Handler) handleListResidents(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.residents.List())
}

func (h *Handler) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]string{"suggestions": resident.Suggestions()})
}
