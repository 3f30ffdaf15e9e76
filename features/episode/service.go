package episode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/neuromaxer/yourcast/internal/config"
	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/transcript"
	"github.com/neuromaxer/yourcast/internal/worker"
)

var ErrAlreadyProcessed = errors.New("episode already processed")

type ProcessedGate interface {
	AlreadyProcessed(ctx context.Context, key transcript.Key) (bool, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type ScrapeScheduler interface {
	Schedule(ctx context.Context, podcastName string, totalPages int) (int, error)
}

// Service accepts scraped episodes at the HTTP boundary and hands them to the
// ingest worker over NSQ. Heavy work (extraction, embedding) never happens on
// the request path.
type Service struct {
	gate      ProcessedGate
	pub       EventPublisher
	scheduler ScrapeScheduler
}

func NewService(gate ProcessedGate, pub EventPublisher, scheduler ScrapeScheduler) *Service {
	return &Service{gate: gate, pub: pub, scheduler: scheduler}
}

// Submit validates the scrape result, rejects duplicates, and enqueues it.
func (s *Service) Submit(ctx context.Context, episode *transcript.Episode) error {
	if err := episode.Validate(); err != nil {
		return err
	}

	processed, err := s.gate.AlreadyProcessed(ctx, episode.Key())
	if err != nil {
		return fmt.Errorf("dedup check for %q: %w", episode.EpisodeName, err)
	}
	if processed {
		return fmt.Errorf("%w: %q", ErrAlreadyProcessed, episode.EpisodeName)
	}

	payload := worker.EpisodeScrapedPayload{
		Episode:       *episode,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal episode payload: %w", err)
	}

	if err := s.pub.Publish(config.TopicEpisodeScraped, body); err != nil {
		return fmt.Errorf("enqueue episode %q: %w", episode.EpisodeName, err)
	}
	return nil
}

// Processed answers the dedup gate probe.
func (s *Service) Processed(ctx context.Context, key transcript.Key) (bool, error) {
	return s.gate.AlreadyProcessed(ctx, key)
}

// ScheduleScrape fans a catalogue scrape out into session-sized tasks.
func (s *Service) ScheduleScrape(ctx context.Context, podcastName string, totalPages int) (int, error) {
	return s.scheduler.Schedule(ctx, podcastName, totalPages)
}
