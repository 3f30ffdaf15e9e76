package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/neuromaxer/yourcast/internal/parser"
)

// Client implements text completion, schema-constrained extraction and
// embeddings on the Gemini API.
type Client struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

func NewClient(ctx context.Context, apiKey, chatModel, embeddingModel string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, chatModel: chatModel, embeddingModel: embeddingModel}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	gm := c.client.GenerativeModel(c.chatModel)
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := gm.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		slog.ErrorContext(ctx, "completion failed", "model", c.chatModel, "error", err)
		return "", err
	}
	return candidateText(resp)
}

var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"episode_summary": {Type: genai.TypeString},
		"bullet_points": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":      {Type: genai.TypeString},
					"timestamp": {Type: genai.TypeInteger},
				},
				Required: []string{"text", "timestamp"},
			},
		},
	},
	Required: []string{"episode_summary", "bullet_points"},
}

func (c *Client) CompleteExtraction(ctx context.Context, system, user string) (*parser.Extraction, error) {
	gm := c.client.GenerativeModel(c.chatModel)
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	gm.ResponseMIMEType = "application/json"
	gm.ResponseSchema = extractionSchema

	resp, err := gm.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		slog.ErrorContext(ctx, "structured completion failed", "model", c.chatModel, "error", err)
		return nil, err
	}
	raw, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	var extraction parser.Extraction
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		return nil, fmt.Errorf("decode structured completion: %w", err)
	}
	return &extraction, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", c.embeddingModel, "length", len(text))
	em := c.client.EmbeddingModel(c.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("embedding response missing vector")
	}
	return res.Embedding.Values, nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.embeddingModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "batch embedding failed", "error", err)
		return nil, err
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embeddings returned %d vectors for %d inputs", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("completion returned no candidates")
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("completion returned no text parts")
	}
	return out, nil
}
