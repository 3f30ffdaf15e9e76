package job

import (
	"encoding/json"
	"time"
)

// Job is a dead-lettered ingestion message kept for manual retry.
type Job struct {
	ID          string          `json:"id"`
	EpisodeName string          `json:"episode_name"`
	Handler     string          `json:"handler"`
	Payload     json.RawMessage `json:"payload"`
	Error       string          `json:"error"`
	Retries     int             `json:"retries"`
	CreatedAt   time.Time       `json:"created_at"`
}
