package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/retrieval"
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]retrieval.Episode, error)
}

type Handler struct {
	service Searcher
}

func NewHandler(s Searcher) *Handler {
	return &Handler{service: s}
}

// Search handles GET /search?query=...&limit=N. The limit bounds the number
// of raw vector matches, not the number of episodes returned.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "query parameter is required", http.StatusBadRequest)
		return
	}

	limit := retrieval.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(ctx, w, "VALIDATION_ERROR", "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	episodes, err := h.service.Search(ctx, query, limit)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "query", query, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if episodes == nil {
		episodes = []retrieval.Episode{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"results": episodes}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
