package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/neuromaxer/yourcast/internal/config"
	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/worker"
)

type Publisher interface {
	Publish(topic string, body []byte) error
}

// TaskScheduler splits a scrape request into per-session page ranges and
// publishes one scrape.task message per range. Scraper sessions degrade with
// age, so no session is asked to cover more than maxSessionPages pages.
type TaskScheduler struct {
	pub             Publisher
	maxSessionPages int
}

func NewTaskScheduler(pub Publisher, maxSessionPages int) *TaskScheduler {
	if maxSessionPages < 1 {
		maxSessionPages = 1
	}
	return &TaskScheduler{pub: pub, maxSessionPages: maxSessionPages}
}

// Schedule enqueues scrape tasks covering pages 1..totalPages of the podcast's
// episode catalogue. Each task carries a fresh session id.
func (s *TaskScheduler) Schedule(ctx context.Context, podcastName string, totalPages int) (int, error) {
	if podcastName == "" {
		return 0, fmt.Errorf("podcast name required")
	}
	if totalPages < 1 {
		return 0, fmt.Errorf("total pages must be positive, got %d", totalPages)
	}

	correlationID := middleware.GetCorrelationID(ctx)

	published := 0
	for start := 1; start <= totalPages; start += s.maxSessionPages {
		end := start + s.maxSessionPages - 1
		if end > totalPages {
			end = totalPages
		}

		payload := worker.ScrapeTaskPayload{
			PodcastName:   podcastName,
			StartPage:     start,
			EndPage:       end,
			SessionID:     uuid.New().String(),
			CorrelationID: correlationID,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return published, fmt.Errorf("marshal scrape task: %w", err)
		}

		if err := s.pub.Publish(config.TopicScrapeTask, body); err != nil {
			return published, fmt.Errorf("publish scrape task pages %d-%d: %w", start, end, err)
		}
		published++
	}

	slog.InfoContext(ctx, "scheduled scrape tasks",
		"podcast", podcastName,
		"pages", totalPages,
		"tasks", published)
	return published, nil
}
