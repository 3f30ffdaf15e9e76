package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/neuromaxer/yourcast/internal/transcript"
)

const (
	// MaxBulletLen bounds a single takeaway and MaxSummaryLen the episode
	// synopsis, both counted in characters rather than bytes.
	MaxBulletLen  = 140
	MaxSummaryLen = 280

	completionTimeout = 120 * time.Second
)

var (
	ErrInvalidExtraction = errors.New("invalid structured extraction")
	ErrEmptyTranscript   = errors.New("empty transcript")
)

// BulletPoint is a single length-bounded, timestamped takeaway.
type BulletPoint struct {
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
}

// Extraction is the validated output of the structured compression pass.
type Extraction struct {
	EpisodeSummary string        `json:"episode_summary"`
	BulletPoints   []BulletPoint `json:"bullet_points"`
}

// TextCompleter produces free-form text for a prompt pair.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ExtractionCompleter produces a schema-validated Extraction for a prompt pair.
type ExtractionCompleter interface {
	CompleteExtraction(ctx context.Context, system, user string) (*Extraction, error)
}

// SummaryWriter persists the episode synopsis keyed by episode name.
type SummaryWriter interface {
	Put(ctx context.Context, episodeName, summary string) error
}

// Extractor runs the two-pass transform: exhaustive free-form extraction,
// then structured compression. The two calls are strictly sequential; the
// summary is persisted only after the structured response validates, and
// before the caller upserts bulletpoints.
type Extractor struct {
	completer  TextCompleter
	structured ExtractionCompleter
	summaries  SummaryWriter
}

func NewExtractor(c TextCompleter, s ExtractionCompleter, w SummaryWriter) *Extractor {
	return &Extractor{completer: c, structured: s, summaries: w}
}

func (e *Extractor) Parse(ctx context.Context, episode *transcript.Episode) (*Extraction, error) {
	if len(episode.Sentences) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTranscript, episode.EpisodeName)
	}

	text := transcript.Concatenate(episode.Sentences)
	userPrompt := fmt.Sprintf(freeFormUserPromptTemplate, text)

	freeCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	freeForm, err := e.completer.Complete(freeCtx, freeFormSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("free-form pass for %q: %w", episode.EpisodeName, err)
	}

	structCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	extraction, err := e.structured.CompleteExtraction(structCtx, structuredSystemPrompt, freeForm)
	if err != nil {
		return nil, fmt.Errorf("structured pass for %q: %w", episode.EpisodeName, err)
	}

	if err := extraction.Validate(); err != nil {
		return nil, fmt.Errorf("episode %q: %w", episode.EpisodeName, err)
	}

	// Summary goes to the store before bulletpoints reach the index. A crash
	// between the two leaves a summary with no retrievable bulletpoints; the
	// reverse (bulletpoints without a summary) would break reassembly.
	if err := e.summaries.Put(ctx, episode.EpisodeName, extraction.EpisodeSummary); err != nil {
		return nil, fmt.Errorf("store summary for %q: %w", episode.EpisodeName, err)
	}

	slog.InfoContext(ctx, "episode parsed",
		"episode", episode.EpisodeName,
		"podcast", episode.PodcastName,
		"bullet_points", len(extraction.BulletPoints))

	return extraction, nil
}

// Validate enforces the length bounds and scrubs annotation leakage. A
// violation aborts the episode before any side effect.
func (x *Extraction) Validate() error {
	if x.EpisodeSummary == "" {
		return fmt.Errorf("%w: empty episode summary", ErrInvalidExtraction)
	}
	if n := utf8.RuneCountInString(x.EpisodeSummary); n > MaxSummaryLen {
		return fmt.Errorf("%w: episode summary is %d chars, max %d",
			ErrInvalidExtraction, n, MaxSummaryLen)
	}

	for i := range x.BulletPoints {
		x.BulletPoints[i].Text = transcript.StripAnnotations(x.BulletPoints[i].Text)
		bp := x.BulletPoints[i]
		if bp.Text == "" {
			return fmt.Errorf("%w: bullet point %d is empty", ErrInvalidExtraction, i)
		}
		if n := utf8.RuneCountInString(bp.Text); n > MaxBulletLen {
			return fmt.Errorf("%w: bullet point %d is %d chars, max %d",
				ErrInvalidExtraction, i, n, MaxBulletLen)
		}
		if bp.Timestamp < 0 {
			return fmt.Errorf("%w: bullet point %d has negative timestamp", ErrInvalidExtraction, i)
		}
	}

	return nil
}
