package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/neuromaxer/yourcast/features/audio"
	"github.com/neuromaxer/yourcast/features/episode"
	"github.com/neuromaxer/yourcast/features/job"
	"github.com/neuromaxer/yourcast/features/podcast"
	"github.com/neuromaxer/yourcast/features/search"
	"github.com/neuromaxer/yourcast/features/stats"
	"github.com/neuromaxer/yourcast/internal/config"
	"github.com/neuromaxer/yourcast/internal/ingest"
	"github.com/neuromaxer/yourcast/internal/middleware"
	"github.com/neuromaxer/yourcast/internal/parser"
	"github.com/neuromaxer/yourcast/internal/retrieval"
	"github.com/neuromaxer/yourcast/internal/scraper"
	"github.com/neuromaxer/yourcast/internal/summary"
	"github.com/neuromaxer/yourcast/internal/worker"
)

type Database interface {
	PingContext(ctx context.Context) error
}

// LLMClient is what a model provider must offer: the two completion passes
// plus embeddings. Both the OpenAI and Gemini adapters satisfy it.
type LLMClient interface {
	parser.TextCompleter
	parser.ExtractionCompleter
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the full vector-index surface the app wires together.
type VectorStore interface {
	ingest.VectorIndex
	retrieval.VectorIndex
	CountBulletPoints(ctx context.Context) (int, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler         http.Handler
	EpisodeConsumer *worker.EpisodeConsumer
	port            int
}

func New(
	cfg *config.Config,
	db Database,
	vecStore VectorStore,
	taskPub TaskPublisher,
	llm LLMClient,
	speech audio.SpeechSynthesizer,
) (*App, error) {

	// Repositories need the concrete handle; the interface in the signature
	// keeps construction mockable with sqlmock.
	sqlDB := db.(*sql.DB)

	summaryRepo := summary.NewPostgresRepo(sqlDB)
	podcastRepo := podcast.NewPostgresRepo(sqlDB)
	jobRepo := job.NewPostgresRepo(sqlDB)

	// Ingestion chain
	gate := ingest.NewGate(vecStore)
	extractor := parser.NewExtractor(llm, llm, summaryRepo)
	pipeline := ingest.NewPipeline(llm, vecStore, podcastRepo, cfg.EmbedBatchSize)
	episodeConsumer := worker.NewEpisodeConsumer(gate, extractor, pipeline, jobRepo, cfg.MaxIngestAttempts)

	// Feature: Episode submission & scrape scheduling
	scheduler := scraper.NewTaskScheduler(taskPub, cfg.MaxSessionPages)
	episodeService := episode.NewService(gate, taskPub, scheduler)
	episodeHandler := episode.NewHandler(episodeService)

	// Feature: Podcast directory
	podcastHandler := podcast.NewHandler(podcastRepo)

	// Feature: Job
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(podcastRepo, jobRepo, summaryRepo, vecStore)

	// Feature: Search
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(llm, vecStore, summaryRepo, queryLogger)
	searchHandler := search.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("GET /search", middleware.CorrelationID(enableCORS(searchHandler.Search)))

	mux.Handle("POST /episodes", middleware.CorrelationID(enableCORS(episodeHandler.Submit)))
	mux.Handle("GET /episodes/processed", middleware.CorrelationID(enableCORS(episodeHandler.Processed)))
	mux.Handle("POST /scrape", middleware.CorrelationID(enableCORS(episodeHandler.ScheduleScrape)))

	mux.Handle("GET /podcasts", middleware.CorrelationID(enableCORS(podcastHandler.List)))
	mux.Handle("GET /podcasts/{name}", middleware.CorrelationID(enableCORS(podcastHandler.Get)))
	mux.Handle("POST /podcasts", middleware.CorrelationID(enableCORS(podcastHandler.Create)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	// Speech synthesis is OpenAI-only; without a synthesizer the audio
	// endpoint is simply not registered.
	if speech != nil {
		audioHandler := audio.NewHandler(audio.NewService(llm, speech))
		mux.Handle("POST /summary_audio", middleware.CorrelationID(enableCORS(audioHandler.Generate)))
	} else {
		slog.Warn("no speech synthesizer configured, /summary_audio disabled")
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:         mux,
		EpisodeConsumer: episodeConsumer,
		port:            cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
