// Package loader reads uploaded or on-disk files into documents.
package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
)

// FileLoader loads plain-text document formats. Unsupported or unreadable
// files yield a *domain.LoadError so batch callers can skip and continue.
type FileLoader struct {
	extensions map[string]struct{}
}

// New creates a loader for the built-in formats (.txt, .md, .markdown).
func New() *FileLoader {
	return &FileLoader{extensions: map[string]struct{}{
		".txt":      {},
		".md":       {},
		".markdown": {},
	}}
}

// Supported reports whether the file name has a loadable extension.
func (l *FileLoader) Supported(name string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Load reads the file at path into a single document. Metadata records the
// source filename.
func (l *FileLoader) Load(path string) ([]domain.Document, error) {
	name := filepath.Base(path)
	if !l.Supported(name) {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("unsupported extension %q", filepath.Ext(name))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &domain.LoadError{Path: path, Err: fmt.Errorf("not valid UTF-8 text")}
	}
	doc := domain.Document{
		ID:       hashID(name, data),
		Text:     string(data),
		Metadata: map[string]string{"source": name},
	}
	return []domain.Document{doc}, nil
}

// LoadUpload writes an in-memory upload to a temp file, loads it and removes
// the temp file again.
func (l *FileLoader) LoadUpload(name string, data []byte) ([]domain.Document, error) {
	if !l.Supported(name) {
		return nil, &domain.LoadError{Path: name, Err: fmt.Errorf("unsupported extension %q", filepath.Ext(name))}
	}
	tmp, err := os.CreateTemp("", "docchat-upload-*"+filepath.Ext(name))
	if err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	docs, err := l.Load(tmpPath)
	if err != nil {
		return nil, &domain.LoadError{Path: name, Err: err}
	}
	// The temp path leaks into the metadata otherwise.
	for i := range docs {
		docs[i].ID = hashID(name, data)
		docs[i].Metadata["source"] = name
	}
	return docs, nil
}

func hashID(name string, data []byte) string {
	h := sha1.New()
	h.Write([]byte(name))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)[:8])
}
