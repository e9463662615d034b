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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding"
	"docchat/internal/embedding/hashing"
	"docchat/internal/embedding/openai"
	"docchat/internal/llm"
	"docchat/internal/loader"
	"docchat/internal/pipeline"
	"docchat/internal/retriever"
	"docchat/internal/server"
	"docchat/internal/service"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore/chromem"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		logger.Fatal("embedder init failed", zap.Error(err))
	}

	st, err := buildVectorStore(cfg)
	if err != nil {
		logger.Fatal("vector store init failed", zap.Error(err))
	}

	model, err := llm.NewClient(llm.Config{
		BaseURL:    cfg.LLM.BaseURL,
		APIKeyEnv:  cfg.LLM.APIKeyEnv,
		Model:      cfg.LLM.Model,
		MaxTokens:  cfg.LLM.MaxTokens,
		Timeout:    time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		logger.Fatal("llm init failed", zap.Error(err))
	}

	docLoader := loader.New()
	svc := service.New(service.Params{
		Loader:           docLoader,
		Chunker:          chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		Embedder:         emb,
		Store:            st,
		Summarizer:       summarizer.NewFrequencySummarizer(),
		SummarySentences: cfg.Summary.MaxSentences,
		Log:              logger,
	})

	if dir := cfg.Server.WatchDir; dir != "" {
		if _, err := svc.IngestPaths(ctx, []string{dir}); err != nil {
			logger.Warn("initial ingest failed", zap.String("dir", dir), zap.Error(err))
		}
		w := watcher.New(func(ctx context.Context, paths []string) error {
			_, err := svc.IngestPaths(ctx, paths)
			return err
		}, docLoader, logger)
		go func() {
			if err := w.Watch(ctx, dir); err != nil {
				logger.Error("watcher stopped", zap.Error(err))
			}
		}()
	}

	rt := retriever.New(emb, st, cfg.Retriever.TopK)
	pipe := pipeline.New(rt, model, cfg.Retriever.TopK, logger)

	srv := server.New(pipe, svc, cfg.Server.Addr, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "openai", "":
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		emb = client
	case "hashing":
		emb = hashing.New(cfg.Embedder.Hashing.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var cache embedding.Store
	if cfg.Cache.Dir != "" {
		fs, err := embedding.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		cache = fs
	} else {
		cache = embedding.NewMemoryStore()
	}
	return embedding.NewCache(emb, cache), nil
}

func buildVectorStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.New(), nil
	case "chromem":
		return chromem.New()
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
