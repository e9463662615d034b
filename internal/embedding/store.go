package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore keeps cached vectors in a map. Used for tests and for runs
// where recomputation is acceptable.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

func (s *MemoryStore) Get(key string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[key]
	return vec, ok
}

func (s *MemoryStore) Set(key string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[key] = vector
	return nil
}

// FileStore keeps one JSON file per cached vector under dir, so vectors
// survive process restarts and repeated ingests of the same content stay
// free.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(key string) ([]float32, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (s *FileStore) Set(key string, vector []float32) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), data, 0o644)
}

// path hashes the key so model names never leak filesystem-hostile runes
// into filenames.
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}
