package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"

	"github.com/neuromaxer/yourcast/features/job"
	"github.com/neuromaxer/yourcast/internal/parser"
	"github.com/neuromaxer/yourcast/internal/transcript"
)

type mockGate struct {
	processed bool
	err       error
	calls     int
}

func (m *mockGate) AlreadyProcessed(ctx context.Context, key transcript.Key) (bool, error) {
	m.calls++
	return m.processed, m.err
}

type mockParser struct {
	extraction *parser.Extraction
	err        error
	calls      int
}

func (m *mockParser) Parse(ctx context.Context, episode *transcript.Episode) (*parser.Extraction, error) {
	m.calls++
	return m.extraction, m.err
}

type mockUpserter struct {
	err   error
	calls int
}

func (m *mockUpserter) UpsertEpisode(ctx context.Context, episode *transcript.Episode, bullets []parser.BulletPoint) error {
	m.calls++
	return m.err
}

type mockJobRepo struct {
	job.Repository
	saved []*job.Job
}

func (m *mockJobRepo) Save(ctx context.Context, j *job.Job) error {
	m.saved = append(m.saved, j)
	return nil
}

func scrapedMessage(t *testing.T, attempts uint16) *nsq.Message {
	t.Helper()
	payload := EpisodeScrapedPayload{
		Episode: transcript.Episode{
			EpisodeName:     "Sleep Toolkit",
			PodcastName:     "Huberman Lab",
			PublicationDate: "2024-01-02",
			Sentences: []transcript.Sentence{
				{Text: "Welcome back.", StartTime: 0.5},
			},
		},
		CorrelationID: "corr-1",
	}
	body, err := json.Marshal(payload)
	assert.NoError(t, err)

	m := nsq.NewMessage(nsq.MessageID{}, body)
	m.Attempts = attempts
	return m
}

func validExtraction() *parser.Extraction {
	return &parser.Extraction{
		EpisodeSummary: "A toolkit for better sleep.",
		BulletPoints: []parser.BulletPoint{
			{Text: "Morning light anchors the circadian clock", Timestamp: 95},
		},
	}
}

func TestEpisodeConsumer_HappyPath(t *testing.T) {
	gate := &mockGate{}
	extractor := &mockParser{extraction: validExtraction()}
	pipeline := &mockUpserter{}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(gate, extractor, pipeline, jobs, 3)

	err := consumer.HandleMessage(scrapedMessage(t, 1))
	assert.NoError(t, err)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, pipeline.calls)
	assert.Empty(t, jobs.saved)
}

func TestEpisodeConsumer_EmptyBodyDropped(t *testing.T) {
	consumer := NewEpisodeConsumer(&mockGate{}, &mockParser{}, &mockUpserter{}, &mockJobRepo{}, 3)

	err := consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, nil))
	assert.NoError(t, err)
}

func TestEpisodeConsumer_MalformedBodyDropped(t *testing.T) {
	extractor := &mockParser{}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(&mockGate{}, extractor, &mockUpserter{}, jobs, 3)

	err := consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, []byte("{not json")))
	assert.NoError(t, err)
	assert.Zero(t, extractor.calls)
	assert.Empty(t, jobs.saved)
}

func TestEpisodeConsumer_IncompleteIdentityDeadLetters(t *testing.T) {
	extractor := &mockParser{}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(&mockGate{}, extractor, &mockUpserter{}, jobs, 3)

	body, _ := json.Marshal(EpisodeScrapedPayload{
		Episode: transcript.Episode{EpisodeName: "Nameless Podcast Episode"},
	})
	err := consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, body))
	assert.NoError(t, err)
	assert.Zero(t, extractor.calls)
	assert.Len(t, jobs.saved, 1)
	assert.Equal(t, "ingest-worker", jobs.saved[0].Handler)
}

func TestEpisodeConsumer_AlreadyProcessedSkips(t *testing.T) {
	gate := &mockGate{processed: true}
	extractor := &mockParser{}
	pipeline := &mockUpserter{}
	consumer := NewEpisodeConsumer(gate, extractor, pipeline, &mockJobRepo{}, 3)

	err := consumer.HandleMessage(scrapedMessage(t, 1))
	assert.NoError(t, err)
	assert.Zero(t, extractor.calls)
	assert.Zero(t, pipeline.calls)
}

func TestEpisodeConsumer_TransientFailureRequeues(t *testing.T) {
	cause := errors.New("embed: connection reset")
	pipeline := &mockUpserter{err: cause}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(&mockGate{}, &mockParser{extraction: validExtraction()}, pipeline, jobs, 3)

	err := consumer.HandleMessage(scrapedMessage(t, 1))
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, jobs.saved)
}

func TestEpisodeConsumer_AttemptBudgetExhaustedDeadLetters(t *testing.T) {
	pipeline := &mockUpserter{err: errors.New("embed: connection reset")}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(&mockGate{}, &mockParser{extraction: validExtraction()}, pipeline, jobs, 3)

	err := consumer.HandleMessage(scrapedMessage(t, 3))
	assert.NoError(t, err)
	assert.Len(t, jobs.saved, 1)
	assert.Equal(t, "Sleep Toolkit", jobs.saved[0].EpisodeName)
}

func TestEpisodeConsumer_InvalidExtractionDeadLettersImmediately(t *testing.T) {
	extractor := &mockParser{err: parser.ErrInvalidExtraction}
	pipeline := &mockUpserter{}
	jobs := &mockJobRepo{}
	consumer := NewEpisodeConsumer(&mockGate{}, extractor, pipeline, jobs, 3)

	err := consumer.HandleMessage(scrapedMessage(t, 1))
	assert.NoError(t, err)
	assert.Zero(t, pipeline.calls)
	assert.Len(t, jobs.saved, 1)
}
