package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"github.com/neuromaxer/yourcast/features/job"
	"github.com/neuromaxer/yourcast/features/podcast"
	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/parser"
	"github.com/neuromaxer/yourcast/internal/transcript"
)

type ProcessedGate interface {
	AlreadyProcessed(ctx context.Context, key transcript.Key) (bool, error)
}

type EpisodeParser interface {
	Parse(ctx context.Context, episode *transcript.Episode) (*parser.Extraction, error)
}

type EpisodeUpserter interface {
	UpsertEpisode(ctx context.Context, episode *transcript.Episode, bullets []parser.BulletPoint) error
}

// EpisodeConsumer handles episode.scraped messages: it runs the two-pass
// extraction and upserts the result into the vector index. Transient failures
// are requeued by NSQ; once the attempt budget is spent, or the failure is
// permanent, the message is dead-lettered into failed_jobs.
type EpisodeConsumer struct {
	gate        ProcessedGate
	extractor   EpisodeParser
	pipeline    EpisodeUpserter
	jobRepo     job.Repository
	maxAttempts uint16
}

func NewEpisodeConsumer(g ProcessedGate, e EpisodeParser, p EpisodeUpserter, j job.Repository, maxAttempts int) *EpisodeConsumer {
	return &EpisodeConsumer{
		gate:        g,
		extractor:   e,
		pipeline:    p,
		jobRepo:     j,
		maxAttempts: uint16(maxAttempts),
	}
}

func (h *EpisodeConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload EpisodeScrapedPayload
	err := json.Unmarshal(m.Body, &payload)

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if err != nil {
		slog.ErrorContext(ctx, "invalid message format", "error", err)
		return nil // Don't retry invalid messages
	}

	episode := &payload.Episode
	if err := episode.Validate(); err != nil {
		slog.ErrorContext(ctx, "episode identity incomplete, dead-lettering", "error", err)
		h.deadLetter(ctx, episode.EpisodeName, m.Body, err)
		return nil
	}

	processed, err := h.gate.AlreadyProcessed(ctx, episode.Key())
	if err != nil {
		return h.retryOrDeadLetter(ctx, m, episode.EpisodeName, err)
	}
	if processed {
		slog.InfoContext(ctx, "episode already processed, skipping",
			"podcast", episode.PodcastName, "episode", episode.EpisodeName)
		return nil
	}

	slog.InfoContext(ctx, "processing episode",
		"podcast", episode.PodcastName,
		"episode", episode.EpisodeName,
		"sentences", len(episode.Sentences),
		"attempt", m.Attempts)

	extraction, err := h.extractor.Parse(ctx, episode)
	if err != nil {
		if isPermanent(err) {
			slog.ErrorContext(ctx, "extraction failed permanently", "episode", episode.EpisodeName, "error", err)
			h.deadLetter(ctx, episode.EpisodeName, m.Body, err)
			return nil
		}
		return h.retryOrDeadLetter(ctx, m, episode.EpisodeName, err)
	}

	if err := h.pipeline.UpsertEpisode(ctx, episode, extraction.BulletPoints); err != nil {
		if isPermanent(err) {
			slog.ErrorContext(ctx, "upsert failed permanently", "episode", episode.EpisodeName, "error", err)
			h.deadLetter(ctx, episode.EpisodeName, m.Body, err)
			return nil
		}
		return h.retryOrDeadLetter(ctx, m, episode.EpisodeName, err)
	}

	slog.InfoContext(ctx, "episode ingested",
		"podcast", episode.PodcastName,
		"episode", episode.EpisodeName,
		"bulletpoints", len(extraction.BulletPoints))
	return nil
}

// isPermanent reports whether retrying the same message can ever succeed.
func isPermanent(err error) bool {
	return errors.Is(err, transcript.ErrIncompleteIdentity) ||
		errors.Is(err, parser.ErrEmptyTranscript) ||
		errors.Is(err, parser.ErrInvalidExtraction) ||
		errors.Is(err, podcast.ErrUnknownPodcast)
}

func (h *EpisodeConsumer) retryOrDeadLetter(ctx context.Context, m *nsq.Message, episodeName string, cause error) error {
	if m.Attempts < h.maxAttempts {
		slog.WarnContext(ctx, "transient failure, requeueing",
			"episode", episodeName, "attempt", m.Attempts, "error", cause)
		return cause
	}

	slog.ErrorContext(ctx, "attempt budget exhausted, dead-lettering",
		"episode", episodeName, "attempts", m.Attempts, "error", cause)
	h.deadLetter(ctx, episodeName, m.Body, cause)
	return nil
}

func (h *EpisodeConsumer) deadLetter(ctx context.Context, episodeName string, body []byte, cause error) {
	failedJob := &job.Job{
		EpisodeName: episodeName,
		Handler:     "ingest-worker",
		Payload:     json.RawMessage(body),
		Error:       cause.Error(),
	}
	if err := h.jobRepo.Save(ctx, failedJob); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
		return
	}
	slog.InfoContext(ctx, "saved failed job for retry", "job_id", failedJob.ID)
}
