// Package service wires loading, chunking, embedding and indexing into the
// "build knowledge base" operation.
package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// DocumentLoader extends the loader boundary with the in-memory upload path.
type DocumentLoader interface {
	domain.Loader
	LoadUpload(name string, data []byte) ([]domain.Document, error)
}

// Upload is a raw uploaded file.
type Upload struct {
	Name string
	Data []byte
}

// Failure records one skipped input of a partially successful ingest.
type Failure struct {
	Name   string
	Reason string
}

// IngestReport summarizes one ingest call.
type IngestReport struct {
	Documents int
	Chunks    int
	Failures  []Failure
	Summary   string
}

// Params carries the service dependencies and knobs.
type Params struct {
	Loader     DocumentLoader
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Store      domain.VectorStore
	Summarizer domain.Summarizer
	// BatchSize is the number of chunk texts per remote embedding call.
	BatchSize int
	// SummarySentences limits the ingest summary length.
	SummarySentences int
	Log              *zap.Logger
}

// KnowledgeService ingests documents into the shared vector index. The index
// is additive for the whole process lifetime; nothing is ever deleted.
type KnowledgeService struct {
	loader           DocumentLoader
	chunker          domain.Chunker
	embedder         domain.Embedder
	store            domain.VectorStore
	summarizer       domain.Summarizer
	batchSize        int
	summarySentences int
	log              *zap.Logger
}

func New(p Params) *KnowledgeService {
	if p.BatchSize <= 0 {
		p.BatchSize = 32
	}
	if p.SummarySentences <= 0 {
		p.SummarySentences = 5
	}
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &KnowledgeService{
		loader:           p.Loader,
		chunker:          p.Chunker,
		embedder:         p.Embedder,
		store:            p.Store,
		summarizer:       p.Summarizer,
		batchSize:        p.BatchSize,
		summarySentences: p.SummarySentences,
		log:              p.Log,
	}
}

// IngestPaths loads the given files (directories are walked for supported
// files) and indexes them. Unloadable files are logged, reported and
// skipped; the rest of the batch continues.
func (s *KnowledgeService) IngestPaths(ctx context.Context, paths []string) (IngestReport, error) {
	var report IngestReport
	var docs []domain.Document
	for _, path := range s.expand(paths, &report) {
		loaded, err := s.loader.Load(path)
		if err != nil {
			s.log.Warn("skipping document", zap.String("path", path), zap.Error(err))
			report.Failures = append(report.Failures, Failure{Name: path, Reason: err.Error()})
			continue
		}
		docs = append(docs, loaded...)
	}
	return s.index(ctx, docs, report)
}

// IngestUploads indexes in-memory uploads with the same partial-success
// semantics as IngestPaths.
func (s *KnowledgeService) IngestUploads(ctx context.Context, uploads []Upload) (IngestReport, error) {
	var report IngestReport
	var docs []domain.Document
	for _, up := range uploads {
		loaded, err := s.loader.LoadUpload(up.Name, up.Data)
		if err != nil {
			s.log.Warn("skipping upload", zap.String("name", up.Name), zap.Error(err))
			report.Failures = append(report.Failures, Failure{Name: up.Name, Reason: err.Error()})
			continue
		}
		docs = append(docs, loaded...)
	}
	return s.index(ctx, docs, report)
}

// Ready reports whether the index holds at least one entry. Callers use it
// as the chat guard: an unready index means the pipeline must not run.
func (s *KnowledgeService) Ready() bool { return s.store.Count() > 0 }

// Count returns the number of indexed chunks.
func (s *KnowledgeService) Count() int { return s.store.Count() }

// index chunks, embeds and upserts. Embedding happens in batches; a failing
// batch aborts the rest of this ingest but leaves everything already
// upserted in place.
func (s *KnowledgeService) index(ctx context.Context, docs []domain.Document, report IngestReport) (IngestReport, error) {
	if len(docs) == 0 {
		return report, nil
	}
	var chunks []domain.Chunk
	var corpus strings.Builder
	for _, doc := range docs {
		split, err := s.chunker.Chunk(doc)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Name: doc.Source(), Reason: err.Error()})
			continue
		}
		chunks = append(chunks, split...)
		corpus.WriteString(doc.Text)
		corpus.WriteString("\n")
	}
	report.Documents = len(docs)

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			s.log.Error("embedding batch failed, aborting ingest",
				zap.Int("indexed", report.Chunks), zap.Error(err))
			return report, err
		}
		if err := s.store.Upsert(ctx, batch, vectors); err != nil {
			return report, err
		}
		report.Chunks += len(batch)
	}

	summary, err := s.summarizer.Summarize(corpus.String(), s.summarySentences)
	if err != nil {
		s.log.Warn("summary failed", zap.Error(err))
	} else {
		report.Summary = summary
	}
	s.log.Info("ingest complete",
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}

// expand walks directories for supported files and passes plain paths
// through untouched. Unreadable paths become failures, not errors.
func (s *KnowledgeService) expand(paths []string, report *IngestReport) []string {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Name: path, Reason: err.Error()})
			continue
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && s.loader.Supported(d.Name()) {
				out = append(out, p)
			}
			return nil
		})
		if walkErr != nil {
			report.Failures = append(report.Failures, Failure{Name: path, Reason: walkErr.Error()})
		}
	}
	return out
}
