package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neuromaxer/yourcast/internal/parser"
	"github.com/neuromaxer/yourcast/internal/transcript"
)

const (
	DefaultBatchSize = 32

	embedTimeout  = 60 * time.Second
	upsertTimeout = 30 * time.Second
)

// Pipeline embeds an episode's bulletpoints and writes them to the vector
// index. Batches are issued strictly in order so that a crash leaves a
// recognizable prefix; a failed batch aborts the episode and rolls back the
// batches already written, keeping the dedup gate's presence-implies-done
// approximation honest.
type Pipeline struct {
	embedder  Embedder
	index     VectorIndex
	podcasts  PodcastDirectory
	batchSize int
}

func NewPipeline(e Embedder, idx VectorIndex, dir PodcastDirectory, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{embedder: e, index: idx, podcasts: dir, batchSize: batchSize}
}

func (p *Pipeline) UpsertEpisode(ctx context.Context, episode *transcript.Episode, bullets []parser.BulletPoint) error {
	if len(bullets) == 0 {
		slog.InfoContext(ctx, "no bulletpoints to upsert", "episode", episode.EpisodeName)
		return nil
	}

	// Every record carries the podcast image; an unknown podcast is an
	// upstream data error, not something to default around.
	pod, err := p.podcasts.Get(ctx, episode.PodcastName)
	if err != nil {
		return fmt.Errorf("resolve podcast for %q: %w", episode.EpisodeName, err)
	}

	texts := make([]string, len(bullets))
	for i, b := range bullets {
		texts[i] = transcript.StripAnnotations(b.Text)
	}

	written := 0
	for start := 0; start < len(bullets); start += p.batchSize {
		end := start + p.batchSize
		if end > len(bullets) {
			end = len(bullets)
		}

		if err := p.upsertBatch(ctx, episode, pod.ImageURL, pod.ListenLink, texts, bullets, start, end); err != nil {
			p.rollback(ctx, episode.EpisodeName)
			return fmt.Errorf("batch %d-%d of %q: %w", start, end, episode.EpisodeName, err)
		}
		written += end - start
	}

	slog.InfoContext(ctx, "episode upserted",
		"episode", episode.EpisodeName,
		"podcast", episode.PodcastName,
		"vectors", written)
	return nil
}

func (p *Pipeline) upsertBatch(ctx context.Context, episode *transcript.Episode, image, listenLink string, texts []string, bullets []parser.BulletPoint, start, end int) error {
	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vectors, err := p.embedder.EmbedBatch(embedCtx, texts[start:end])
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != end-start {
		return fmt.Errorf("embed returned %d vectors for %d texts", len(vectors), end-start)
	}

	records := make([]Record, 0, end-start)
	for i := start; i < end; i++ {
		records = append(records, Record{
			ID:     RecordID(texts[i], i),
			Vector: vectors[i-start],
			Metadata: Metadata{
				Text:              texts[i],
				Timestamp:         bullets[i].Timestamp,
				EpisodeName:       episode.EpisodeName,
				SourcePodcastName: episode.PodcastName,
				PublishedDate:     episode.PublicationDate,
				ListenLink:        listenLink,
				Image:             image,
			},
		})
	}

	upsertCtx, cancel := context.WithTimeout(ctx, upsertTimeout)
	defer cancel()

	if err := p.index.UpsertBatch(upsertCtx, records); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// rollback removes whatever this episode managed to write. Best effort: if
// the delete itself fails the episode is left partial and the gate will
// misreport it as processed, which is the documented limitation.
func (p *Pipeline) rollback(ctx context.Context, episodeName string) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upsertTimeout)
	defer cancel()

	if err := p.index.DeleteEpisode(rbCtx, episodeName); err != nil {
		slog.ErrorContext(ctx, "rollback failed, episode left partially upserted",
			"episode", episodeName, "error", err)
		return
	}
	slog.WarnContext(ctx, "rolled back partial upsert", "episode", episodeName)
}
