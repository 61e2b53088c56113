package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/cardbox/internal/entities"
)

// LocalStore persists the card document as a single JSON file.
// It doubles as the fallback cache for the remote backends.
type LocalStore struct {
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// Path returns the location of the backing file.
func (s *LocalStore) Path() string {
	return s.path
}

// Exists reports whether the backing file is present on disk.
func (s *LocalStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the whole document. A missing, unreadable or malformed file
// yields an empty default document rather than an error.
func (s *LocalStore) Load() *entities.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read local file %s: %v", s.path, err)
		}
		return entities.NewDocument()
	}

	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("Local file %s contains invalid JSON: %v", s.path, err)
		return entities.NewDocument()
	}

	doc.Normalize()
	return &doc
}

// Save rewrites the whole document, creating the containing directory
// when missing. Returns false instead of propagating I/O errors.
func (s *LocalStore) Save(doc *entities.Document) bool {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("Failed to create data directory for %s: %v", s.path, err)
		return false
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal document: %v", err)
		return false
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("Failed to write local file %s: %v", s.path, err)
		return false
	}

	return true
}
