package podcast

import (
	"context"
	"errors"
	"time"
)

// Podcast is a directory entry. Every stored bulletpoint denormalizes the
// image and listen link from here, so a missing entry is a hard failure at
// ingest time, never a defaulted blank.
type Podcast struct {
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url"`
	ListenLink string    `json:"listen_link"`
	CreatedAt  time.Time `json:"created_at"`
}

var ErrUnknownPodcast = errors.New("unknown podcast")

type Repository interface {
	Get(ctx context.Context, name string) (*Podcast, error)
	List(ctx context.Context) ([]Podcast, error)
	Save(ctx context.Context, p *Podcast) error
	Count(ctx context.Context) (int, error)
}
