package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/neuromaxer/yourcast/internal/ingest"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	searchTimeout = 30 * time.Second
)

// Match is one ranked bulletpoint returned by the vector index.
type Match struct {
	Score    float32
	Metadata ingest.Metadata
}

// Takeaway mirrors a stored bulletpoint in the API response.
type Takeaway struct {
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
}

// Episode is the reassembled, episode-level view of flat matches.
type Episode struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Host         string     `json:"host"`
	HostID       string     `json:"hostId"`
	Image        string     `json:"image"`
	Summary      string     `json:"summary"`
	Date         string     `json:"date"`
	KeyTakeaways []Takeaway `json:"keyTakeaways"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorIndex interface {
	Query(ctx context.Context, vector []float32, limit int) ([]Match, error)
}

type SummaryReader interface {
	Get(ctx context.Context, episodeName string) (string, error)
}

type Service struct {
	embedder  Embedder
	index     VectorIndex
	summaries SummaryReader
	logger    *QueryLogger
}

func NewService(e Embedder, idx VectorIndex, s SummaryReader, l *QueryLogger) *Service {
	return &Service{embedder: e, index: idx, summaries: s, logger: l}
}

// Search embeds the query with the same model used at ingestion, fetches at
// most limit raw matches, and regroups them into episodes in first-seen
// order. limit bounds raw matches, not distinct episodes.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Episode, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vec, err := s.embedder.Embed(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(callCtx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	episodes, err := s.reassemble(ctx, matches)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:       query,
			Limit:       limit,
			NumMatches:  len(matches),
			NumEpisodes: len(episodes),
			Duration:    time.Since(start),
		})
	}

	return episodes, nil
}

// reassemble groups flat matches by episode name. The first match for an
// episode materializes its shell; later matches append takeaways in match
// order. Episode order follows first appearance, not a post-grouping resort.
func (s *Service) reassemble(ctx context.Context, matches []Match) ([]Episode, error) {
	episodes := make([]Episode, 0, len(matches))
	byName := make(map[string]int)

	for _, m := range matches {
		takeaway := Takeaway{Text: m.Metadata.Text, Timestamp: m.Metadata.Timestamp}

		if idx, seen := byName[m.Metadata.EpisodeName]; seen {
			episodes[idx].KeyTakeaways = append(episodes[idx].KeyTakeaways, takeaway)
			continue
		}

		// A bulletpoint in the index without a stored synopsis means the
		// ingest ordering invariant was broken; surface it, don't blank it.
		summary, err := s.summaries.Get(ctx, m.Metadata.EpisodeName)
		if err != nil {
			return nil, fmt.Errorf("summary for matched episode %q: %w", m.Metadata.EpisodeName, err)
		}

		byName[m.Metadata.EpisodeName] = len(episodes)
		episodes = append(episodes, Episode{
			ID:           MakeID(m.Metadata.EpisodeName),
			Title:        m.Metadata.EpisodeName,
			Host:         m.Metadata.SourcePodcastName,
			HostID:       MakeID(m.Metadata.SourcePodcastName),
			Image:        m.Metadata.Image,
			Summary:      summary,
			Date:         m.Metadata.PublishedDate,
			KeyTakeaways: []Takeaway{takeaway},
		})
	}

	return episodes, nil
}

// MakeID derives a stable, URL-safe identifier from a display name. The same
// name always slugs to the same id, which clients rely on for caching and
// deep links.
func MakeID(name string) string {
	return slug.Make(name)
}
