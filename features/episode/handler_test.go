package episode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuromaxer/yourcast/internal/config"
	"github.com/neuromaxer/yourcast/internal/transcript"
	"github.com/neuromaxer/yourcast/internal/worker"
)

type mockGate struct {
	processed bool
	err       error
	gotKey    transcript.Key
}

func (m *mockGate) AlreadyProcessed(ctx context.Context, key transcript.Key) (bool, error) {
	m.gotKey = key
	return m.processed, m.err
}

type mockPublisher struct {
	topics []string
	bodies [][]byte
	err    error
}

func (m *mockPublisher) Publish(topic string, body []byte) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	m.bodies = append(m.bodies, body)
	return nil
}

type mockScheduler struct {
	tasks      int
	err        error
	gotPodcast string
	gotPages   int
}

func (m *mockScheduler) Schedule(ctx context.Context, podcastName string, totalPages int) (int, error) {
	m.gotPodcast = podcastName
	m.gotPages = totalPages
	return m.tasks, m.err
}

func scrapedBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(transcript.Episode{
		EpisodeName:     "Sleep Toolkit",
		PodcastName:     "Huberman Lab",
		PublicationDate: "2024-01-02",
		Sentences: []transcript.Sentence{
			{Text: "Welcome back.", StartTime: 0.5},
		},
	})
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestHandler_Submit(t *testing.T) {
	pub := &mockPublisher{}
	handler := NewHandler(NewService(&mockGate{}, pub, nil))

	req := httptest.NewRequest("POST", "/episodes", scrapedBody(t))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{config.TopicEpisodeScraped}, pub.topics)

	var payload worker.EpisodeScrapedPayload
	assert.NoError(t, json.Unmarshal(pub.bodies[0], &payload))
	assert.Equal(t, "Sleep Toolkit", payload.EpisodeName)
	assert.Len(t, payload.Sentences, 1)
}

func TestHandler_Submit_Duplicate(t *testing.T) {
	pub := &mockPublisher{}
	handler := NewHandler(NewService(&mockGate{processed: true}, pub, nil))

	req := httptest.NewRequest("POST", "/episodes", scrapedBody(t))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, pub.topics)
	assert.Contains(t, rec.Body.String(), "ALREADY_PROCESSED")
}

func TestHandler_Submit_IncompleteIdentity(t *testing.T) {
	handler := NewHandler(NewService(&mockGate{}, &mockPublisher{}, nil))

	body, _ := json.Marshal(transcript.Episode{EpisodeName: "No Podcast Name"})
	req := httptest.NewRequest("POST", "/episodes", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Submit_PublishFailure(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nsqd unreachable")}
	handler := NewHandler(NewService(&mockGate{}, pub, nil))

	req := httptest.NewRequest("POST", "/episodes", scrapedBody(t))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "nsqd")
}

func TestHandler_Processed(t *testing.T) {
	gate := &mockGate{processed: true}
	handler := NewHandler(NewService(gate, &mockPublisher{}, nil))

	req := httptest.NewRequest("GET", "/episodes/processed?podcast=Huberman+Lab&episode=Sleep+Toolkit&date=2024-01-02", nil)
	rec := httptest.NewRecorder()
	handler.Processed(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Huberman Lab", gate.gotKey.PodcastName)
	assert.Contains(t, rec.Body.String(), `"processed":true`)
}

func TestHandler_Processed_MissingParams(t *testing.T) {
	handler := NewHandler(NewService(&mockGate{}, &mockPublisher{}, nil))

	req := httptest.NewRequest("GET", "/episodes/processed?podcast=Huberman+Lab", nil)
	rec := httptest.NewRecorder()
	handler.Processed(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ScheduleScrape(t *testing.T) {
	sched := &mockScheduler{tasks: 3}
	handler := NewHandler(NewService(&mockGate{}, &mockPublisher{}, sched))

	body := bytes.NewBufferString(`{"podcast_name":"Huberman Lab","total_pages":450}`)
	req := httptest.NewRequest("POST", "/scrape", body)
	rec := httptest.NewRecorder()
	handler.ScheduleScrape(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Huberman Lab", sched.gotPodcast)
	assert.Equal(t, 450, sched.gotPages)
	assert.Contains(t, rec.Body.String(), `"tasks":3`)
}

func TestHandler_ScheduleScrape_BadInput(t *testing.T) {
	handler := NewHandler(NewService(&mockGate{}, &mockPublisher{}, &mockScheduler{}))

	body := bytes.NewBufferString(`{"podcast_name":"","total_pages":0}`)
	req := httptest.NewRequest("POST", "/scrape", body)
	rec := httptest.NewRecorder()
	handler.ScheduleScrape(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
