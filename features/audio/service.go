package audio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/neuromaxer/yourcast/internal/parser"
)

const (
	composeTimeout = 120 * time.Second
	speechTimeout  = 120 * time.Second
)

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// EpisodeSample is one selected episode with its takeaway texts flattened.
type EpisodeSample struct {
	Title        string   `json:"title"`
	Host         string   `json:"host"`
	Summary      string   `json:"summary"`
	KeyTakeaways []string `json:"keyTakeaways"`
}

// Request is the summary_audio body: the selected episodes plus the knobs
// steering the generated script.
type Request struct {
	Length     string          `json:"length"`
	Tone       string          `json:"tone"`
	Style      string          `json:"style"`
	DataSample []EpisodeSample `json:"data_sample"`
}

func (r *Request) Validate() error {
	if len(r.DataSample) == 0 {
		return fmt.Errorf("data_sample must contain at least one episode")
	}
	if r.Length == "" {
		r.Length = "precise"
	}
	if r.Tone == "" {
		r.Tone = "neutral"
	}
	if r.Style == "" {
		r.Style = "single"
	}
	return nil
}

const scriptSystemPrompt = `You are a talented podcast script writer. You turn key takeaways ` +
	`from podcast episodes into a spoken summary script. Write text that sounds natural when ` +
	`read aloud by a text-to-speech voice: no headings, no bullet markers, no stage directions. ` +
	`Stay strictly true to the provided takeaways and do not invent facts.`

// Service turns selected episodes into a spoken summary: one completion call
// writes the script, one speech call renders it.
type Service struct {
	completer parser.TextCompleter
	speech    SpeechSynthesizer
}

func NewService(c parser.TextCompleter, s SpeechSynthesizer) *Service {
	return &Service{completer: c, speech: s}
}

// Generate returns the audio stream for the request. The caller must close it.
func (s *Service) Generate(ctx context.Context, req *Request) (io.ReadCloser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	composeCtx, cancel := context.WithTimeout(ctx, composeTimeout)
	defer cancel()

	script, err := s.completer.Complete(composeCtx, scriptSystemPrompt, buildScriptPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("compose script: %w", err)
	}
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("compose script: empty script")
	}

	speechCtx, cancel := context.WithTimeout(ctx, speechTimeout)
	defer cancel()

	stream, err := s.speech.Synthesize(speechCtx, script)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return stream, nil
}

func buildScriptPrompt(req *Request) string {
	var b strings.Builder

	switch req.Style {
	case "conversation":
		b.WriteString("Write a dialogue between two podcast hosts, Alex and Sam, discussing the material below. ")
	default:
		b.WriteString("Write a monologue for a single podcast host presenting the material below. ")
	}

	switch req.Length {
	case "elaborate":
		b.WriteString("Cover every takeaway with context and connective tissue between topics. ")
	default:
		b.WriteString("Keep it brief: one or two sentences per takeaway. ")
	}

	fmt.Fprintf(&b, "Use a %s tone.\n\n", req.Tone)

	for _, ep := range req.DataSample {
		fmt.Fprintf(&b, "Episode: %s (%s)\n", ep.Title, ep.Host)
		if ep.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", ep.Summary)
		}
		for _, takeaway := range ep.KeyTakeaways {
			fmt.Fprintf(&b, "- %s\n", takeaway)
		}
		b.WriteString("\n")
	}

	return b.String()
}
