// Wordsense serves word prediction from descriptions, prediction feedback
// and speech transcription over HTTP.
//
// The labeled corpus is embedded in full before the server accepts any
// request; any load or encode failure aborts startup.
//
// Usage:
//
//	# Start with environment configuration (.env is read when present)
//	wordsense
//
//	# Layer a YAML file under the environment
//	wordsense --config /etc/wordsense/config.yaml
//
//	# Print version information
//	wordsense version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wordsense/internal/config"
	"github.com/fyrsmithlabs/wordsense/internal/corpus"
	"github.com/fyrsmithlabs/wordsense/internal/embeddings"
	"github.com/fyrsmithlabs/wordsense/internal/feedback"
	httpserver "github.com/fyrsmithlabs/wordsense/internal/http"
	"github.com/fyrsmithlabs/wordsense/internal/logging"
	"github.com/fyrsmithlabs/wordsense/internal/mongodb"
	"github.com/fyrsmithlabs/wordsense/internal/prediction"
	"github.com/fyrsmithlabs/wordsense/internal/services"
	"github.com/fyrsmithlabs/wordsense/internal/telemetry"
	"github.com/fyrsmithlabs/wordsense/internal/transcription"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  wordsense [--config path]   Start the wordsense server\n")
			fmt.Fprintf(os.Stderr, "  wordsense version           Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("wordsense: %v", err)
	}
}

func printVersion() {
	fmt.Printf("wordsense by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every component and blocks until ctx is cancelled or the
// server fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	logger, err := initLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting wordsense",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("corpus_source", cfg.Corpus.Source),
		zap.String("feedback_backend", cfg.Feedback.Backend),
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
	)

	deps, err := initDependencies(ctx, cfg, tel, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	registry, err := initServices(ctx, cfg, deps, tel, logger)
	if err != nil {
		return err
	}

	opts := []httpserver.Option{
		httpserver.WithTracerProvider(tel.TracerProvider()),
	}
	if cfg.Telemetry.MetricsEnabled {
		opts = append(opts, httpserver.WithMeterProvider(tel.MeterProvider()))
	}
	if cfg.Telemetry.Prometheus {
		opts = append(opts, httpserver.WithMetricsHandler(tel.Handler()))
	}
	srv, err := httpserver.NewServer(registry, logger, httpserver.ConfigFromSettings(cfg.Server), opts...)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutdown signal received",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}

	logger.Info(context.Background(), "server shutdown complete")
	return nil
}

func initLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(logCfg, tel.LoggerProvider())
}

// dependencies holds the external clients owned by the process.
type dependencies struct {
	provider   embeddings.Provider
	embedder   *embeddings.Instrumented
	mongo      *mongodb.Client
	recognizer *transcription.GoogleRecognizer
	logger     *logging.Logger
}

// Close releases all external clients.
func (d *dependencies) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if d.recognizer != nil {
		if err := d.recognizer.Close(); err != nil {
			d.logger.Warn(ctx, "failed to close speech client", zap.Error(err))
		}
	}
	if d.mongo != nil {
		if err := d.mongo.Disconnect(ctx); err != nil {
			d.logger.Warn(ctx, "failed to disconnect mongodb", zap.Error(err))
		}
	}
	if d.provider != nil {
		if err := d.provider.Close(); err != nil {
			d.logger.Warn(ctx, "failed to close embedding provider", zap.Error(err))
		}
	}
}

// initDependencies connects the embedding provider, MongoDB (when any
// component uses it) and the speech client.
func initDependencies(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry, logger *logging.Logger) (_ *dependencies, err error) {
	deps := &dependencies{logger: logger}
	defer func() {
		if err != nil {
			deps.Close()
		}
	}()

	deps.provider, err = embeddings.NewProvider(embeddings.FromSettings(cfg.Embeddings))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	deps.embedder = embeddings.WithMetrics(deps.provider, embeddings.NewMetrics(tel.MeterProvider(), logger.Underlying()))

	logger.Info(ctx, "embedding provider initialized",
		zap.String("provider", cfg.Embeddings.Provider),
		zap.String("model", deps.provider.ModelID()),
		zap.Int("dimension", deps.provider.Dimension()),
	)

	if cfg.UsesMongoDB() {
		deps.mongo, err = mongodb.Connect(ctx, cfg.MongoDB, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
	}

	deps.recognizer, err = transcription.NewGoogleRecognizer(ctx, transcription.GoogleConfig{
		ProjectID:       cfg.GCP.ProjectID,
		Location:        cfg.Speech.Location,
		Language:        cfg.Speech.Language,
		Model:           cfg.Speech.Model,
		CredentialsFile: cfg.GCP.CredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return deps, nil
}

// initServices loads the corpus and builds the prediction, feedback and
// transcription services.
func initServices(ctx context.Context, cfg *config.Config, deps *dependencies, tel *telemetry.Telemetry, logger *logging.Logger) (services.Registry, error) {
	mp := tel.MeterProvider()

	var source corpus.Source
	switch cfg.Corpus.Source {
	case config.SourceFile:
		source = corpus.NewFileSource(cfg.Corpus.Path)
	default:
		source = mongodb.NewCorpusSource(deps.mongo, cfg.MongoDB.CorpusCollection)
	}

	c, err := corpus.Load(ctx, source, deps.embedder, corpus.LoadOptions{
		BatchSize: cfg.Embeddings.BatchSize,
		Workers:   cfg.Embeddings.Workers,
		Logger:    logger.Named("corpus"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	predMetrics, err := prediction.NewMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction metrics: %w", err)
	}
	engine, err := prediction.New(c, deps.embedder,
		prediction.WithDefaultTopK(cfg.Prediction.TopK),
		prediction.WithMetrics(predMetrics),
		prediction.WithLogger(logger.Named("prediction")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction engine: %w", err)
	}

	var store feedback.Store
	switch cfg.Feedback.Backend {
	case config.SourceFile:
		store = feedback.NewFileStore(cfg.Feedback.Path)
	default:
		store = mongodb.NewFeedbackStore(deps.mongo, cfg.MongoDB.FeedbackCollection)
	}

	trMetrics, err := transcription.NewMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription metrics: %w", err)
	}
	transcriber := transcription.NewService(deps.recognizer,
		transcription.WithThreshold(cfg.Speech.ConfidenceThreshold),
		transcription.WithMetrics(trMetrics),
		transcription.WithLogger(logger.Named("transcription")),
	)

	readiness := map[string]services.Pinger{}
	if deps.mongo != nil {
		readiness[config.SourceMongoDB] = deps.mongo
	}

	logger.Info(ctx, "services initialized",
		zap.Int("corpus_size", engine.CorpusSize()),
		zap.Int("distinct_labels", c.DistinctLabels()),
		zap.String("model_version", engine.ModelVersion()),
	)

	return services.NewRegistry(services.Options{
		Predictor:    engine,
		Feedback:     feedback.NewRecorder(store, logger.Named("feedback")),
		Transcriber:  transcriber,
		Dependencies: readiness,
	}), nil
}
