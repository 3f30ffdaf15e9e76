package config

const (
	// TopicScrapeTask is the NSQ topic for browser scrape tasks consumed by
	// the external scraper worker.
	TopicScrapeTask = "scrape.task"

	// TopicEpisodeScraped is the NSQ topic for scraped episode transcripts
	// awaiting extraction and upsert.
	TopicEpisodeScraped = "episode.scraped"
)
