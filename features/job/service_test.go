package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuromaxer/yourcast/internal/config"
)

type MockPublisher struct {
	LastTopic string
	LastBody  []byte
	Err       error
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	m.LastTopic = topic
	m.LastBody = body
	return m.Err
}

type MockRepo struct {
	Repository
	Jobs    map[string]*Job
	Deleted []string
}

func (m *MockRepo) Get(ctx context.Context, id string) (*Job, error) {
	if j, ok := m.Jobs[id]; ok {
		return j, nil
	}
	return nil, errors.New("not found")
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockRepo) List(ctx context.Context) ([]Job, error) {
	return []Job{{ID: "1"}, {ID: "2"}}, nil
}

func (m *MockRepo) Count(ctx context.Context) (int, error) { return 10, nil }

func TestService_Retry_RepublishesAndDeletes(t *testing.T) {
	payload := []byte(`{"episode_name":"Sleep Toolkit"}`)
	repo := &MockRepo{Jobs: map[string]*Job{"1": {ID: "1", Payload: payload}}}
	pub := &MockPublisher{}
	service := NewService(repo, pub)

	err := service.Retry(context.Background(), "1")
	assert.NoError(t, err)
	assert.Equal(t, config.TopicEpisodeScraped, pub.LastTopic)
	assert.Equal(t, payload, pub.LastBody)
	assert.Equal(t, []string{"1"}, repo.Deleted)
}

func TestService_Retry_PublishFailureKeepsJob(t *testing.T) {
	repo := &MockRepo{Jobs: map[string]*Job{"1": {ID: "1", Payload: []byte("{}")}}}
	pub := &MockPublisher{Err: errors.New("nsqd unreachable")}
	service := NewService(repo, pub)

	err := service.Retry(context.Background(), "1")
	assert.Error(t, err)
	assert.Empty(t, repo.Deleted)
}

func TestService_Retry_UnknownJob(t *testing.T) {
	repo := &MockRepo{Jobs: map[string]*Job{}}
	service := NewService(repo, &MockPublisher{})

	err := service.Retry(context.Background(), "missing")
	assert.Error(t, err)
}

func TestService_List(t *testing.T) {
	service := NewService(&MockRepo{}, nil)

	jobs, err := service.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, "1", jobs[0].ID)
}

func TestService_Count(t *testing.T) {
	service := NewService(&MockRepo{}, nil)

	count, err := service.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 10, count)
}
