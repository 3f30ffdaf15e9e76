package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/neuromaxer/yourcast/internal/parser"
)

// Client implements text completion, schema-constrained extraction,
// embeddings and speech synthesis on the OpenAI API.
type Client struct {
	cli            *openai.Client
	chatModel      string
	embeddingModel string
	speechModel    string
}

func NewClient(apiKey, chatModel, embeddingModel, speechModel string) *Client {
	return &Client{
		cli:            openai.NewClient(apiKey),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		speechModel:    speechModel,
	}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	slog.DebugContext(ctx, "completion finished",
		"model", c.chatModel,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

// CompleteExtraction constrains the response to the Extraction JSON schema.
// Anything the API returns that does not decode into the schema surfaces as
// an error; the caller owns validation of the semantic bounds.
func (c *Client) CompleteExtraction(ctx context.Context, system, user string) (*parser.Extraction, error) {
	schema, err := jsonschema.GenerateSchemaForType(parser.Extraction{})
	if err != nil {
		return nil, fmt.Errorf("generate extraction schema: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "bullet_points",
				Schema: schema,
				Strict: true,
			},
		},
	}

	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("structured completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("structured completion returned no choices")
	}

	var extraction parser.Extraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &extraction); err != nil {
		return nil, fmt.Errorf("decode structured completion: %w", err)
	}
	return &extraction, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: texts,
	}

	resp, err := c.cli.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Synthesize renders text to speech and returns the audio stream. The caller
// must close it.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.cli.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(c.speechModel),
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	return resp, nil
}
