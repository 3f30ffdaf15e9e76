package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/neuromaxer/yourcast/features/podcast"
	"github.com/neuromaxer/yourcast/internal/transcript"
)

// Metadata is the denormalized record attached to each stored vector.
// Episodes are not first-class in the index; they are reconstructed at read
// time by grouping records sharing EpisodeName.
type Metadata struct {
	Text              string `json:"text"`
	Timestamp         int    `json:"timestamp"`
	EpisodeName       string `json:"episode_name"`
	SourcePodcastName string `json:"source_podcast_name"`
	PublishedDate     string `json:"published_date"`
	ListenLink        string `json:"listen_link"`
	Image             string `json:"image"`
}

type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorIndex interface {
	UpsertBatch(ctx context.Context, records []Record) error
	HasEpisode(ctx context.Context, key transcript.Key) (bool, error)
	DeleteEpisode(ctx context.Context, episodeName string) error
}

type PodcastDirectory interface {
	Get(ctx context.Context, name string) (*podcast.Podcast, error)
}

// recordNamespace anchors the UUIDv5 derivation of vector ids.
var recordNamespace = uuid.MustParse("7b1f64d0-53c7-5f2e-9d41-2a80a68cbd93")

// RecordID derives a stable identifier from bullet text and its position in
// the episode's full bullet list. Re-running extraction on identical content
// yields identical ids, so upserts replace rather than duplicate. The
// position component means a reordered or re-batched list mints new ids for
// unchanged text; retained deliberately, see DESIGN.md.
func RecordID(text string, position int) string {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%s|%d", text, position))).String()
}
