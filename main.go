package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"github.com/neuromaxer/yourcast/features/audio"
	"github.com/neuromaxer/yourcast/internal/adapter/gemini"
	"github.com/neuromaxer/yourcast/internal/adapter/openai"
	"github.com/neuromaxer/yourcast/internal/app"
	"github.com/neuromaxer/yourcast/internal/config"
	"github.com/neuromaxer/yourcast/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("service exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting yourcast",
		"provider", cfg.LLMProvider,
		"api", cfg.EnableAPI,
		"ingest_worker", cfg.EnableIngestWorker)

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()

	// Model provider. Speech synthesis is OpenAI-only, so with Gemini selected
	// the audio endpoint still rides on an OpenAI key when one is present.
	var llm app.LLMClient
	var speech audio.SpeechSynthesizer
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gclient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ChatModel, cfg.EmbeddingModel)
		if err != nil {
			return err
		}
		defer gclient.Close()
		llm = gclient
		if cfg.OpenAIAPIKey != "" {
			speech = openai.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbeddingModel, cfg.SpeechModel)
		}
	default:
		oclient := openai.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbeddingModel, cfg.SpeechModel)
		llm = oclient
		speech = oclient
	}

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, llm, speech)
	if err != nil {
		return err
	}

	if cfg.EnableIngestWorker {
		nsqCfg := nsq.NewConfig()
		nsqCfg.MaxAttempts = uint16(cfg.MaxIngestAttempts)

		consumer, err := nsq.NewConsumer(config.TopicEpisodeScraped, "ingest-worker", nsqCfg)
		if err != nil {
			return err
		}
		consumer.AddConcurrentHandlers(nsq.HandlerFunc(a.EpisodeConsumer.HandleMessage), cfg.IngestConcurrency)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			return err
		}
		defer consumer.Stop()
		slog.Info("ingest worker connected", "concurrency", cfg.IngestConcurrency)
	}

	if cfg.EnableAPI {
		return a.Run(ctx)
	}

	<-ctx.Done()
	return nil
}
