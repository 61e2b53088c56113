package services

import (
	"github.com/mrlokans/cardbox/internal/entities"
	"github.com/mrlokans/cardbox/internal/storage"
)

// DocumentStore is the load/save contract services run on. Satisfied by
// storage.HybridStore; tests substitute stubs.
type DocumentStore interface {
	Load() *entities.Document
	Save(doc *entities.Document) storage.SaveResult
}
