package services

import (
	"fmt"
	"log"

	"github.com/mrlokans/cardbox/internal/entities"
	"github.com/mrlokans/cardbox/internal/excel"
)

// ImportMode selects how imported cards are reconciled with the document.
type ImportMode string

const (
	// ImportModeAppend keeps existing cards and adds non-duplicates.
	ImportModeAppend ImportMode = "append"
	// ImportModeReplace makes the imported cards the entire document.
	ImportModeReplace ImportMode = "replace"
)

// ParseImportMode defaults to append for anything unrecognized.
func ParseImportMode(s string) ImportMode {
	if ImportMode(s) == ImportModeReplace {
		return ImportModeReplace
	}
	return ImportModeAppend
}

// ImportStats reports the outcome of one import run. Errors counts rows
// that could not be turned into cards (question and answer both empty);
// Skipped counts duplicates.
type ImportStats struct {
	Imported      int    `json:"imported"`
	Skipped       int    `json:"skipped"`
	Errors        int    `json:"errors"`
	Total         int    `json:"total"`
	Themes        int    `json:"themes"`
	NextID        int    `json:"next_id"`
	PreviousTotal int    `json:"previous_total"`
	Mode          string `json:"mode"`
	Error         string `json:"error,omitempty"`
}

// ImportService runs the spreadsheet import pipeline:
// validate -> read -> parse -> reconcile -> recompute ids/themes -> persist.
// The save at the end is the only mutation point; any earlier failure
// returns without touching the document.
type ImportService struct {
	store    DocumentStore
	importer *excel.Importer
}

func NewImportService(store DocumentStore) *ImportService {
	return &ImportService{
		store:    store,
		importer: excel.NewImporter(),
	}
}

// Preview returns a bounded look at the file without mutating anything.
func (s *ImportService) Preview(path string, limit int) (*excel.Preview, error) {
	return s.importer.GetPreview(path, limit)
}

// ValidateFile checks whether the file is an importable spreadsheet.
func (s *ImportService) ValidateFile(path string) (bool, string) {
	return s.importer.ValidateFile(path)
}

// ImportFile imports the spreadsheet at path into the document.
func (s *ImportService) ImportFile(path string, mode ImportMode) (bool, ImportStats) {
	stats := ImportStats{Mode: string(mode)}

	if ok, message := s.importer.ValidateFile(path); !ok {
		stats.Error = message
		return false, stats
	}

	rows, err := s.importer.ReadRows(path, excel.MaxImportRows)
	if err != nil {
		stats.Error = fmt.Sprintf("Ошибка чтения файла: %v", err)
		return false, stats
	}
	if len(rows) == 0 {
		stats.Error = "Файл не содержит данных или пуст"
		return false, stats
	}

	imported := s.importer.ParseRows(rows)
	stats.Errors = len(rows) - 1 - len(imported)
	if len(imported) == 0 {
		stats.Error = "Не удалось извлечь данные из файла"
		return false, stats
	}

	doc := s.store.Load()
	stats.PreviousTotal = len(doc.Cards)

	switch mode {
	case ImportModeReplace:
		s.replaceCards(doc, imported, &stats)
	default:
		s.appendCards(doc, imported, &stats)
	}

	doc.SortByID()
	doc.Themes = doc.ExtractThemes()

	stats.Total = len(doc.Cards)
	stats.Themes = len(doc.Themes)
	stats.NextID = doc.NextID

	result := s.store.Save(doc)
	if !result.Local {
		stats.Error = "Ошибка сохранения данных"
		return false, stats
	}

	log.Printf("import: mode=%s imported=%d skipped=%d total=%d next_id=%d",
		mode, stats.Imported, stats.Skipped, stats.Total, stats.NextID)
	return true, stats
}

// replaceCards makes the imported cards the whole document. Identifiers
// are renumbered from 1 and the theme set is rebuilt from scratch.
func (s *ImportService) replaceCards(doc *entities.Document, imported []entities.Card, stats *ImportStats) {
	for i := range imported {
		imported[i].ID = i + 1
	}
	doc.Cards = imported
	doc.NextID = len(imported) + 1
	stats.Imported = len(imported)
}

// appendCards merges imported cards into the existing set, skipping any
// whose normalized question matches an existing card (or an earlier card
// in the same batch). New cards always get the next identifier above the
// current maximum; identifiers carried in the file are ignored.
func (s *ImportService) appendCards(doc *entities.Document, imported []entities.Card, stats *ImportStats) {
	existing := make(map[string]int, len(doc.Cards))
	for _, card := range doc.Cards {
		existing[excel.NormalizeText(card.Question)] = card.ID
	}

	nextID := doc.MaxID() + 1

	for _, card := range imported {
		key := excel.NormalizeText(card.Question)
		if _, dup := existing[key]; dup {
			stats.Skipped++
			continue
		}

		card.ID = nextID
		nextID++
		existing[key] = card.ID
		doc.Cards = append(doc.Cards, card)
		stats.Imported++
	}

	if nextID > doc.NextID {
		doc.NextID = nextID
	}
}
