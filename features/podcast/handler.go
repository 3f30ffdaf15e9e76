package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/neuromaxer/yourcast/internal/middleware"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	podcasts, err := h.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list podcasts", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if podcasts == nil {
		podcasts = []Podcast{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": podcasts}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	p, err := h.repo.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUnknownPodcast) {
			h.writeError(ctx, w, "NOT_FOUND", "Podcast not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(ctx, "failed to get podcast", "name", name, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": p}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name       string `json:"name"`
		ImageURL   string `json:"image_url"`
		ListenLink string `json:"listen_link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "name is required", http.StatusBadRequest)
		return
	}
	if req.ImageURL == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "image_url is required", http.StatusBadRequest)
		return
	}

	p := &Podcast{Name: req.Name, ImageURL: req.ImageURL, ListenLink: req.ListenLink}
	if err := h.repo.Save(ctx, p); err != nil {
		slog.ErrorContext(ctx, "failed to save podcast", "name", req.Name, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": p}); err != nil {
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
