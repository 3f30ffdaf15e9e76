package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/neuromaxer/yourcast/internal/middleware"
)

type PodcastRepo interface {
	Count(ctx context.Context) (int, error)
}

type JobRepo interface {
	Count(ctx context.Context) (int, error)
}

type SummaryRepo interface {
	Count(ctx context.Context) (int, error)
}

type VectorStore interface {
	CountBulletPoints(ctx context.Context) (int, error)
}

type Handler struct {
	podcastRepo PodcastRepo
	jobRepo     JobRepo
	summaryRepo SummaryRepo
	vectorStore VectorStore
}

func NewHandler(p PodcastRepo, j JobRepo, s SummaryRepo, v VectorStore) *Handler {
	return &Handler{podcastRepo: p, jobRepo: j, summaryRepo: s, vectorStore: v}
}

type StatsResponse struct {
	Podcasts     int `json:"podcasts"`
	Episodes     int `json:"episodes"`
	BulletPoints int `json:"bulletpoints"`
	FailedJobs   int `json:"failed_jobs"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	pCount, err := h.podcastRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count podcasts", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count podcasts", http.StatusInternalServerError)
		return
	}

	// One summary row per ingested episode.
	eCount, err := h.summaryRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count episodes", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count episodes", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	bCount, err := h.vectorStore.CountBulletPoints(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count bulletpoints", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count bulletpoints", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Podcasts:     pCount,
		Episodes:     eCount,
		BulletPoints: bCount,
		FailedJobs:   jCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
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
