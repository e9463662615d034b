package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
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
	"docchat/internal/service"
	"docchat/internal/summarizer"
	"docchat/internal/tui"
	"docchat/internal/vectorstore/chromem"
	"docchat/internal/vectorstore/memory"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: docchat [--config=config.yaml] file1.txt [dir ...]")
		os.Exit(1)
	}

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

	// The alternate screen owns stdout and stderr once the TUI starts, so
	// component logs go nowhere here; failures surface through the report.
	logger := zap.NewNop()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	st, err := buildVectorStore(cfg)
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
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
		log.Fatalf("llm init failed: %v", err)
	}

	svc := service.New(service.Params{
		Loader:           loader.New(),
		Chunker:          chunker.NewWindowChunker(cfg.Chunker.Size, cfg.Chunker.Overlap),
		Embedder:         emb,
		Store:            st,
		Summarizer:       summarizer.NewFrequencySummarizer(),
		SummarySentences: cfg.Summary.MaxSentences,
		Log:              logger,
	})

	report, err := svc.IngestPaths(context.Background(), inputs)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", f.Name, f.Reason)
	}

	rt := retriever.New(emb, st, cfg.Retriever.TopK)
	pipe := pipeline.New(rt, model, cfg.Retriever.TopK, logger)

	m := tui.New(pipe, svc.Ready, uuid.NewString(), report.Summary)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
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
