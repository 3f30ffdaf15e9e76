package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	podcasts []Podcast
	getErr   error
	saveErr  error
	listErr  error
	saved    *Podcast
}

func (m *mockRepo) Get(ctx context.Context, name string) (*Podcast, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.podcasts {
		if m.podcasts[i].Name == name {
			return &m.podcasts[i], nil
		}
	}
	return nil, ErrUnknownPodcast
}

func (m *mockRepo) List(ctx context.Context) ([]Podcast, error) {
	return m.podcasts, m.listErr
}

func (m *mockRepo) Save(ctx context.Context, p *Podcast) error {
	m.saved = p
	return m.saveErr
}

func (m *mockRepo) Count(ctx context.Context) (int, error) {
	return len(m.podcasts), nil
}

func TestList_ReturnsData(t *testing.T) {
	repo := &mockRepo{podcasts: []Podcast{
		{Name: "Huberman Lab", ImageURL: "https://img/huberman.jpg"},
	}}
	h := NewHandler(repo)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest("GET", "/podcasts", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []Podcast `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Huberman Lab", resp.Data[0].Name)
}

func TestList_EmptyIsArrayNotNull(t *testing.T) {
	h := NewHandler(&mockRepo{})

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest("GET", "/podcasts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestGet_NotFound(t *testing.T) {
	h := NewHandler(&mockRepo{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /podcasts/{name}", h.Get)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/podcasts/Unknown%20Show", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGet_RepoFailureHidesDetail(t *testing.T) {
	h := NewHandler(&mockRepo{getErr: errors.New("pq: connection refused")})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /podcasts/{name}", h.Get)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/podcasts/Huberman%20Lab", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestCreate_SavesPodcast(t *testing.T) {
	repo := &mockRepo{}
	h := NewHandler(repo)

	body := `{"name":"Lex Fridman Podcast","image_url":"https://img/lex.jpg","listen_link":"https://pod.link/lex"}`
	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest("POST", "/podcasts", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.saved)
	assert.Equal(t, "Lex Fridman Podcast", repo.saved.Name)
	assert.Equal(t, "https://pod.link/lex", repo.saved.ListenLink)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"MissingName", `{"image_url":"https://img/x.jpg"}`},
		{"MissingImage", `{"name":"Some Show"}`},
		{"BadJSON", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{}
			h := NewHandler(repo)

			w := httptest.NewRecorder()
			h.Create(w, httptest.NewRequest("POST", "/podcasts", strings.NewReader(tc.body)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, repo.saved)
		})
	}
}
