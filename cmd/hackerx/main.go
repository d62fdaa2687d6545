package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Not-Buddy/HackerXAPI/internal/ai"
	"github.com/Not-Buddy/HackerXAPI/internal/config"
	"github.com/Not-Buddy/HackerXAPI/internal/db"
	"github.com/Not-Buddy/HackerXAPI/internal/embedcache"
	"github.com/Not-Buddy/HackerXAPI/internal/extract"
	"github.com/Not-Buddy/HackerXAPI/internal/fetch"
	"github.com/Not-Buddy/HackerXAPI/internal/job"
	"github.com/Not-Buddy/HackerXAPI/internal/repo"
	"github.com/Not-Buddy/HackerXAPI/internal/schedule"
	"github.com/Not-Buddy/HackerXAPI/internal/service"
)

type app struct {
	cfg       *config.Config
	db        *sql.DB
	chunks    *repo.ChunkRepo
	ingest    *service.IngestService
	retrieval *service.RetrievalService
}

func setup(configPath string) (*app, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	chunks := repo.NewChunkRepo(conn)

	embedder, err := buildEmbedder(cfg.AI)
	if err != nil {
		return nil, err
	}
	embedder = embedcache.WrapLruCacheToEmbedder(embedder,
		cfg.AI.LRUSize, time.Duration(cfg.AI.LRUTTLMinutes)*time.Minute)

	fetcher, err := fetch.NewDispatcher(map[string]interface{}{
		"http": map[string]interface{}{"timeout_seconds": cfg.Fetch.TimeoutSeconds},
		"s3":   cfg.Fetch.S3,
	})
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}
	router := extract.NewRouter(extract.Options{
		ToolTimeout:     time.Duration(cfg.Extract.ToolTimeoutSeconds) * time.Second,
		LargePDFPages:   cfg.Extract.LargePDFPages,
		Workers:         cfg.Extract.Workers,
		AllowEstimation: cfg.Extract.AllowEstimation,
	})

	ingest := service.NewIngestService(fetcher, router, chunks, embedder, service.IngestConfig{
		TmpDir:         cfg.Fetch.TmpDir,
		ChunkMaxChars:  cfg.Chunk.MaxChars,
		MaxConcurrency: cfg.AI.MaxConcurrency,
	})
	retrieval := service.NewRetrievalService(chunks, embedder)

	return &app{
		cfg:       cfg,
		db:        conn,
		chunks:    chunks,
		ingest:    ingest,
		retrieval: retrieval,
	}, nil
}

// buildEmbedder constructs the primary embedder, and when fallback
// providers are configured, a group that tries them in order after the
// primary fails.
func buildEmbedder(cfg config.AIConfig) (ai.IEmbedder, error) {
	provider, err := ai.NewProvider(cfg.Provider, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	primary := ai.NewEmbedder(provider, cfg.Model)
	if len(cfg.Fallbacks) == 0 {
		return primary, nil
	}
	entries := []ai.EmbedderEntry{{Name: cfg.Provider + "/" + cfg.Model, Embedder: primary}}
	for _, fb := range cfg.Fallbacks {
		fbProvider, err := ai.NewProvider(fb.Provider, fb.Data)
		if err != nil {
			return nil, fmt.Errorf("init fallback provider %s: %w", fb.Provider, err)
		}
		entries = append(entries, ai.EmbedderEntry{
			Name:     fb.Provider + "/" + fb.Model,
			Embedder: ai.NewEmbedder(fbProvider, fb.Model),
		})
	}
	return ai.NewGroupEmbedder(entries), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "hackerx",
		Short: "document ingestion and retrieval pipeline",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	ingestCmd := &cobra.Command{
		Use:   "ingest [document-url]",
		Short: "fetch, extract, embed and cache a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath)
			if err != nil {
				return err
			}
			defer a.db.Close()
			ctx, cancel := signalContext()
			defer cancel()
			if err := a.ingest.Ingest(ctx, args[0]); err != nil {
				return err
			}
			doc, err := a.chunks.DescribeDocument(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s (%d chunks)\n", doc.Status, doc.Key, doc.ChunkCount)
			return nil
		},
	}

	var topK int
	var threshold float32
	queryCmd := &cobra.Command{
		Use:   "query [document-url] [question...]",
		Short: "retrieve the most relevant cached chunks for one or more questions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath)
			if err != nil {
				return err
			}
			defer a.db.Close()
			ctx, cancel := signalContext()
			defer cancel()
			if err := a.ingest.Ingest(ctx, args[0]); err != nil {
				return err
			}
			// Unset flags fall back to the configured retrieval defaults.
			if topK <= 0 {
				topK = a.cfg.Retrieval.TopK
			}
			if threshold <= 0 {
				threshold = a.cfg.Retrieval.Threshold
			}
			matches, err := a.retrieval.Retrieve(ctx, args[0], args[1:], topK, threshold)
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Printf("--- chunk %d (score %.4f) ---\n%s\n", m.Chunk.ChunkIndex, m.Score, m.Chunk.Text)
			}
			return nil
		},
	}
	queryCmd.Flags().IntVar(&topK, "top-k", 0, "maximum chunks to return (default from config)")
	queryCmd.Flags().Float32Var(&threshold, "threshold", 0, "minimum similarity score (default from config)")

	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "run the scheduled cleanup jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(configPath)
			if err != nil {
				return err
			}
			defer a.db.Close()
			ctx, cancel := signalContext()
			defer cancel()

			scheduler := schedule.NewCronScheduler()
			if err := scheduler.AddJob(job.NewTempCleanupJob(a.cfg.Fetch.TmpDir, a.cfg.Jobs.TempMaxAgeHours), a.cfg.Jobs.TempCleanupSpec); err != nil {
				return err
			}
			if a.cfg.Jobs.EnableCacheCleanup {
				if err := scheduler.AddJob(job.NewChunkCacheCleanupJob(a.chunks, a.cfg.Jobs.CacheMaxAgeDays), a.cfg.Jobs.CacheCleanupSpec); err != nil {
					return err
				}
			}
			scheduler.Start(ctx)
			<-ctx.Done()
			scheduler.Stop()
			return nil
		},
	}

	rootCmd.AddCommand(ingestCmd, queryCmd, jobsCmd)
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
