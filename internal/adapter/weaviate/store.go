package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/neuromaxer/yourcast/internal/ingest"
	"github.com/neuromaxer/yourcast/internal/retrieval"
	"github.com/neuromaxer/yourcast/internal/transcript"
	"github.com/neuromaxer/yourcast/internal/vector"
)

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// UpsertBatch writes one batch of records. Record ids are deterministic, so
// re-sending a batch overwrites the same objects instead of duplicating them.
func (s *Store) UpsertBatch(ctx context.Context, records []ingest.Record) error {
	if len(records) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(records))
	for i, r := range records {
		objects[i] = &models.Object{
			Class: vector.ClassName,
			ID:    strfmt.UUID(r.ID),
			Properties: map[string]interface{}{
				"text":              r.Metadata.Text,
				"timestamp":         r.Metadata.Timestamp,
				"episodeName":       r.Metadata.EpisodeName,
				"sourcePodcastName": r.Metadata.SourcePodcastName,
				"publishedDate":     r.Metadata.PublishedDate,
				"listenLink":        r.Metadata.ListenLink,
				"image":             r.Metadata.Image,
			},
			Vector: models.C11yVector(r.Vector),
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().
		WithObjects(objects...).
		Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// HasEpisode reports whether at least one bulletpoint exists for the episode.
// Presence of any object implies the episode was fully ingested; partial
// writes are rolled back by the pipeline.
func (s *Store) HasEpisode(ctx context.Context, key transcript.Key) (bool, error) {
	where := filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			filters.Where().
				WithPath([]string{"sourcePodcastName"}).
				WithOperator(filters.Equal).
				WithValueString(key.PodcastName),
			filters.Where().
				WithPath([]string{"episodeName"}).
				WithOperator(filters.Equal).
				WithValueString(key.EpisodeName),
			filters.Where().
				WithPath([]string{"publishedDate"}).
				WithOperator(filters.Equal).
				WithValueString(key.PublishedDate),
		})

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithWhere(where).
		WithLimit(1).
		WithFields(graphql.Field{Name: "episodeName"}).
		Do(ctx)
	if err != nil {
		return false, err
	}
	if len(res.Errors) > 0 {
		return false, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objects, ok := data[vector.ClassName].([]interface{}); ok {
			return len(objects) > 0, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteEpisode(ctx context.Context, episodeName string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"episodeName"}).
			WithOperator(filters.Equal).
			WithValueString(episodeName)).
		Do(ctx)
	return err
}

// Query runs a nearVector search and returns the raw ranked matches.
func (s *Store) Query(ctx context.Context, queryVector []float32, limit int) ([]retrieval.Match, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryVector)

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "timestamp"},
		{Name: "episodeName"},
		{Name: "sourcePodcastName"},
		{Name: "publishedDate"},
		{Name: "listenLink"},
		{Name: "image"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var matches []retrieval.Match
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objects, ok := data[vector.ClassName].([]interface{}); ok {
			for _, o := range objects {
				props, ok := o.(map[string]interface{})
				if !ok {
					continue
				}
				match := retrieval.Match{}

				if text, ok := props["text"].(string); ok {
					match.Metadata.Text = text
				}
				if ts, ok := props["timestamp"].(float64); ok {
					match.Metadata.Timestamp = int(ts)
				}
				if name, ok := props["episodeName"].(string); ok {
					match.Metadata.EpisodeName = name
				}
				if name, ok := props["sourcePodcastName"].(string); ok {
					match.Metadata.SourcePodcastName = name
				}
				if date, ok := props["publishedDate"].(string); ok {
					match.Metadata.PublishedDate = date
				}
				if link, ok := props["listenLink"].(string); ok {
					match.Metadata.ListenLink = link
				}
				if image, ok := props["image"].(string); ok {
					match.Metadata.Image = image
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if certainty, ok := additional["certainty"].(float64); ok {
						match.Score = float32(certainty)
					}
				}

				matches = append(matches, match)
			}
		}
	}
	return matches, nil
}

// CountBulletPoints returns the total number of stored takeaways.
func (s *Store) CountBulletPoints(ctx context.Context) (int, error) {
	fields := []graphql.Field{
		{Name: "meta", Fields: []graphql.Field{{Name: "count"}}},
	}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if objects, ok := data[vector.ClassName].([]interface{}); ok && len(objects) > 0 {
			if props, ok := objects[0].(map[string]interface{}); ok {
				if meta, ok := props["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}
