package excel

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/cardbox/internal/entities"
)

const (
	// MaxFileSize is the upload ceiling for spreadsheet files (50 MB).
	MaxFileSize = 50 * 1024 * 1024

	// MaxImportRows bounds how many rows an import reads, headers included.
	MaxImportRows = 1000

	columnCount = 8
)

// difficultyLabels maps localized and boolean-ish difficulty spellings to
// the stored enum. Lookups are case-insensitive; anything unrecognized
// defaults to medium.
var difficultyLabels = map[string]entities.Difficulty{
	"легкий":  entities.DifficultyEasy,
	"easy":    entities.DifficultyEasy,
	"средний": entities.DifficultyMedium,
	"medium":  entities.DifficultyMedium,
	"сложный": entities.DifficultyHard,
	"hard":    entities.DifficultyHard,
}

// hiddenLabels maps yes/no spellings to the hidden flag. Unrecognized
// values default to false.
var hiddenLabels = map[string]bool{
	"да":    true,
	"yes":   true,
	"true":  true,
	"1":     true,
	"+":     true,
	"нет":   false,
	"no":    false,
	"false": false,
	"0":     false,
	"-":     false,
}

// HeaderMatch compares one file header against the expected column header.
type HeaderMatch struct {
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Matches  bool   `json:"matches"`
}

// Preview is a bounded, non-mutating look at a spreadsheet's content plus a
// per-column report of how its headers line up with the expected layout.
type Preview struct {
	FileName       string        `json:"file_name"`
	Rows           [][]string    `json:"rows"`
	TotalRows      int           `json:"total_rows"`
	ShownRows      int           `json:"shown_rows"`
	HeaderMatches  []HeaderMatch `json:"header_matches"`
	HeadersCorrect int           `json:"headers_correct"`
	HeadersTotal   int           `json:"headers_total"`
}

// Importer parses workbooks with the fixed 8-column card layout.
type Importer struct{}

func NewImporter() *Importer {
	return &Importer{}
}

// ValidateFile checks that the path points to an importable spreadsheet:
// it must exist, carry an xlsx/xls extension, be non-empty, stay under the
// size ceiling and open as a valid workbook container.
func (im *Importer) ValidateFile(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, "Файл не существует"
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xls" {
		return false, "Поддерживаются только файлы Excel (.xlsx, .xls)"
	}

	if info.Size() == 0 {
		return false, "Файл пустой"
	}
	if info.Size() > MaxFileSize {
		return false, fmt.Sprintf("Файл слишком большой (максимум %d MB)", MaxFileSize/(1024*1024))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return false, fmt.Sprintf("Не удалось открыть файл: %v", err)
	}
	f.Close()

	return true, "Файл прошел проверку"
}

// ReadRows reads up to maxRows rows from the first sheet, cleaning every
// cell on the way in.
func (im *Importer) ReadRows(path string, maxRows int) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	if maxRows > 0 && len(raw) > maxRows {
		raw = raw[:maxRows]
	}

	rows := make([][]string, len(raw))
	for i, row := range raw {
		cleaned := make([]string, len(row))
		for j, cell := range row {
			cleaned[j] = CleanText(cell)
		}
		rows[i] = cleaned
	}
	return rows, nil
}

// ParseRows interprets the first row as headers and every following row
// strictly by column position. Header mismatches are logged, not fatal.
// Short rows are padded; rows with both question and answer empty are
// skipped. Identifier values found in the file are parsed but callers are
// expected to reassign identifiers themselves.
func (im *Importer) ParseRows(rows [][]string) []entities.Card {
	if len(rows) < 2 {
		return nil
	}

	reportHeaderMismatches(rows[0])

	var cards []entities.Card
	for idx, row := range rows[1:] {
		row = padRow(row)

		question := row[1]
		answer := row[2]
		if question == "" && answer == "" {
			log.Printf("excel: row %d skipped, question and answer are both empty", idx+2)
			continue
		}

		cards = append(cards, entities.Card{
			Question:    question,
			Answer:      answer,
			Explanation: row[3],
			Theme:       row[4],
			Difficulty:  parseDifficultyLabel(row[5]),
			Hidden:      parseHiddenLabel(row[6]),
			Version:     row[7],
		})
	}
	return cards
}

// GetPreview validates the file and returns a bounded preview of its rows
// with a header comparison report. Nothing is persisted.
func (im *Importer) GetPreview(path string, limit int) (*Preview, error) {
	if ok, message := im.ValidateFile(path); !ok {
		return nil, fmt.Errorf("%s", message)
	}

	rows, err := im.ReadRows(path, limit+1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("файл не содержит данных")
	}

	// The displayed rows are bounded, the reported total is not
	totalRows, err := im.countRows(path)
	if err != nil {
		return nil, err
	}

	fileHeaders := padRow(rows[0])
	matches := make([]HeaderMatch, len(Headers))
	correct := 0
	for i, expected := range Headers {
		actual := fileHeaders[i]
		ok := strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(expected))
		if ok {
			correct++
		}
		matches[i] = HeaderMatch{Expected: expected, Actual: actual, Matches: ok}
	}

	dataRows := rows[1:]
	shown := len(dataRows)
	if shown > limit {
		dataRows = dataRows[:limit]
		shown = limit
	}

	preview := make([][]string, len(dataRows))
	for i, row := range dataRows {
		row = padRow(row)
		for j, cell := range row {
			if len([]rune(cell)) > 100 {
				row[j] = string([]rune(cell)[:97]) + "..."
			}
		}
		preview[i] = row
	}

	return &Preview{
		FileName:       filepath.Base(path),
		Rows:           preview,
		TotalRows:      totalRows - 1,
		ShownRows:      shown,
		HeaderMatches:  matches,
		HeadersCorrect: correct,
		HeadersTotal:   len(Headers),
	}, nil
}

// countRows streams through the first sheet and counts its rows, header
// included, without loading cell values.
func (im *Importer) countRows(path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("workbook contains no sheets")
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	defer iter.Close()

	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}

func reportHeaderMismatches(headers []string) {
	headers = padRow(headers)
	for i, expected := range Headers {
		if !strings.EqualFold(strings.TrimSpace(headers[i]), expected) {
			log.Printf("excel: column %d header mismatch: expected %q, found %q", i+1, expected, headers[i])
		}
	}
}

// padRow right-pads a row with empty strings up to the fixed column count.
func padRow(row []string) []string {
	if len(row) >= columnCount {
		return row[:columnCount]
	}
	padded := make([]string, columnCount)
	copy(padded, row)
	return padded
}

func parseDifficultyLabel(s string) entities.Difficulty {
	if d, ok := difficultyLabels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d
	}
	return entities.DifficultyMedium
}

func parseHiddenLabel(s string) bool {
	if h, ok := hiddenLabels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return h
	}
	return false
}
