package ingest

import (
	"context"

	"github.com/neuromaxer/yourcast/internal/transcript"
)

// Gate answers whether an episode's bulletpoints are already in the index,
// keyed by (podcast name, episode name, published date). It asks for a single
// match under an exact metadata filter: any surviving vector means processed.
//
// This is best-effort. An episode whose upsert crashed after its rollback
// also failed still reads as processed; callers must not treat a true answer
// as a completeness guarantee.
type Gate struct {
	index VectorIndex
}

func NewGate(index VectorIndex) *Gate {
	return &Gate{index: index}
}

func (g *Gate) AlreadyProcessed(ctx context.Context, key transcript.Key) (bool, error) {
	return g.index.HasEpisode(ctx, key)
}
