package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentence is one timestamped line produced by the scraper. Ordering is
// chronological within an episode and must survive concatenation.
type Sentence struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	SpeakerID int     `json:"speaker_id"`
}

// Episode is the scrape result for a single episode. Immutable once scraped.
type Episode struct {
	EpisodeName     string     `json:"episode_name"`
	PodcastName     string     `json:"podcast_name"`
	PublicationDate string     `json:"publication_date"`
	URL             string     `json:"url"`
	Sentences       []Sentence `json:"sentences"`
}

// Key is the natural identity of an episode and the deduplication key.
type Key struct {
	PodcastName   string
	EpisodeName   string
	PublishedDate string
}

var ErrIncompleteIdentity = errors.New("episode identity incomplete")

func (e *Episode) Key() Key {
	return Key{
		PodcastName:   e.PodcastName,
		EpisodeName:   e.EpisodeName,
		PublishedDate: e.PublicationDate,
	}
}

func (e *Episode) Validate() error {
	if e.EpisodeName == "" || e.PodcastName == "" || e.PublicationDate == "" {
		return fmt.Errorf("%w: podcast=%q episode=%q date=%q",
			ErrIncompleteIdentity, e.PodcastName, e.EpisodeName, e.PublicationDate)
	}
	return nil
}

// Concatenate joins the sentences into one transcript string, each followed
// by its timestamp annotation. Sentence order is preserved exactly; the
// annotations are what lets the extractor attribute takeaways to offsets.
func Concatenate(sentences []Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString(s.Text)
		b.WriteString(fmt.Sprintf(" (%v sec) ", s.StartTime))
	}
	return b.String()
}

var annotationRe = regexp.MustCompile(`\s*\(\d+(?:\.\d+)?\s*sec\)`)

// StripAnnotations removes timestamp markup that leaked from Concatenate
// into extracted text. Runs before embedding.
func StripAnnotations(text string) string {
	return strings.TrimSpace(annotationRe.ReplaceAllString(text, ""))
}
