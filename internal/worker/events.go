package worker

import "github.com/neuromaxer/yourcast/internal/transcript"

// EpisodeScrapedPayload is the message body on the episode.scraped topic.
// It embeds the scrape result plus the correlation id threaded through from
// whatever enqueued it.
type EpisodeScrapedPayload struct {
	transcript.Episode

	CorrelationID string `json:"correlation_id,omitempty"`
}

// ScrapeTaskPayload is the message body on the scrape.task topic. One payload
// covers a contiguous range of catalogue pages handled by a single scraper
// session.
type ScrapeTaskPayload struct {
	PodcastName   string `json:"podcast_name"`
	StartPage     int    `json:"start_page"`
	EndPage       int    `json:"end_page"`
	SessionID     string `json:"session_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
