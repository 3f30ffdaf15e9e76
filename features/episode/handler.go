package episode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/transcript"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// Submit handles POST /episodes. The body is the scraper's episode JSON; on
// success the episode is queued and 202 returned before any extraction runs.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var episode transcript.Episode
	if err := json.NewDecoder(r.Body).Decode(&episode); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Submit(ctx, &episode); err != nil {
		switch {
		case errors.Is(err, transcript.ErrIncompleteIdentity):
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrAlreadyProcessed):
			h.writeError(ctx, w, "ALREADY_PROCESSED", err.Error(), http.StatusConflict)
		default:
			slog.ErrorContext(ctx, "failed to submit episode",
				"episode", episode.EpisodeName, "error", err)
			h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": "episode queued"}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Processed handles GET /episodes/processed. All three identity params are
// required; a partial identity cannot be answered.
func (h *Handler) Processed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	key := transcript.Key{
		PodcastName:   q.Get("podcast"),
		EpisodeName:   q.Get("episode"),
		PublishedDate: q.Get("date"),
	}
	if key.PodcastName == "" || key.EpisodeName == "" || key.PublishedDate == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "podcast, episode and date are required", http.StatusBadRequest)
		return
	}

	processed, err := h.service.Processed(ctx, key)
	if err != nil {
		slog.ErrorContext(ctx, "processed probe failed", "episode", key.EpisodeName, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"processed": processed}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// ScheduleScrape handles POST /scrape.
func (h *Handler) ScheduleScrape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		PodcastName string `json:"podcast_name"`
		TotalPages  int    `json:"total_pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.PodcastName == "" || req.TotalPages < 1 {
		h.writeError(ctx, w, "VALIDATION_ERROR", "podcast_name and a positive total_pages are required", http.StatusBadRequest)
		return
	}

	tasks, err := h.service.ScheduleScrape(ctx, req.PodcastName, req.TotalPages)
	if err != nil {
		slog.ErrorContext(ctx, "failed to schedule scrape", "podcast", req.PodcastName, "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]int{"tasks": tasks}); err != nil {
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
