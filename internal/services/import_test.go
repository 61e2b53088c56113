package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/cardbox/internal/entities"
	"github.com/mrlokans/cardbox/internal/excel"
	"github.com/mrlokans/cardbox/internal/storage"
)

// writeImportFile creates an xlsx with the standard headers plus data rows.
func writeImportFile(t *testing.T, dataRows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{excel.Headers}, dataRows...)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "import.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseImportMode(t *testing.T) {
	assert.Equal(t, ImportModeReplace, ParseImportMode("replace"))
	assert.Equal(t, ImportModeAppend, ParseImportMode("append"))
	assert.Equal(t, ImportModeAppend, ParseImportMode("anything"))
	assert.Equal(t, ImportModeAppend, ParseImportMode(""))
}

func TestImportAppendToEmptyDocument(t *testing.T) {
	path := writeImportFile(t, [][]string{
		{"", "Вопрос 1", "Ответ 1", "", "Травмы", "Легкий", "Нет", ""},
		{"", "Вопрос 2", "Ответ 2", "", "Простуда", "Сложный", "Да", ""},
	})

	store := newStubStore()
	svc := NewImportService(store)

	ok, stats := svc.ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Themes)
	assert.Equal(t, 3, stats.NextID)

	assert.Equal(t, 1, store.doc.Cards[0].ID)
	assert.Equal(t, 2, store.doc.Cards[1].ID)
	assert.Equal(t, []string{"Простуда", "Травмы"}, store.doc.Themes)
}

func TestImportAppendSkipsDuplicates(t *testing.T) {
	store := newStubStore()
	seedCards(store, entities.Card{ID: 5, Theme: "Травмы", Question: "Что такое Arnica?", Answer: "A"})

	// Same question modulo case and punctuation plus one new card
	path := writeImportFile(t, [][]string{
		{"", "что такое ARNICA", "другой ответ", "", "Травмы", "", "", ""},
		{"", "Новый вопрос", "Ответ", "", "Жар", "", "", ""},
	})

	svc := NewImportService(store)
	ok, stats := svc.ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.PreviousTotal)

	// New card gets an identifier above the existing maximum
	assert.Equal(t, 6, store.doc.Cards[1].ID)
	assert.Equal(t, 7, store.doc.NextID)
}

func TestImportAppendDeduplicatesWithinBatch(t *testing.T) {
	path := writeImportFile(t, [][]string{
		{"", "Один и тот же вопрос", "Ответ 1", "", "T", "", "", ""},
		{"", "один и тот же ВОПРОС!", "Ответ 2", "", "T", "", "", ""},
	})

	store := newStubStore()
	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportAppendIgnoresFileIdentifiers(t *testing.T) {
	store := newStubStore()
	seedCards(store, entities.Card{ID: 10, Theme: "T", Question: "Существующий", Answer: "A"})

	// The file claims identifier 1; a fresh one must be assigned instead
	path := writeImportFile(t, [][]string{
		{"1", "Новый вопрос", "Ответ", "", "T", "", "", ""},
	})

	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	require.Len(t, store.doc.Cards, 2)
	assert.Equal(t, 11, store.doc.Cards[1].ID)
}

func TestImportReplaceRebuildsDocument(t *testing.T) {
	store := newStubStore()
	seedCards(store,
		entities.Card{ID: 40, Theme: "Старая", Question: "Старый вопрос", Answer: "A"},
		entities.Card{ID: 41, Theme: "Старая", Question: "Еще один", Answer: "A"},
	)

	path := writeImportFile(t, [][]string{
		{"99", "Новый 1", "Ответ", "", "Жар", "Легкий", "", ""},
		{"7", "Новый 2", "Ответ", "", "Травмы", "", "", ""},
		{"3", "Новый 3", "Ответ", "", "Жар", "", "Да", ""},
	})

	ok, stats := NewImportService(store).ImportFile(path, ImportModeReplace)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 3, stats.Imported)
	assert.Equal(t, 2, stats.PreviousTotal)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 4, stats.NextID)

	// Identifiers are renumbered from 1 regardless of file contents
	require.Len(t, store.doc.Cards, 3)
	for i, card := range store.doc.Cards {
		assert.Equal(t, i+1, card.ID)
	}
	assert.Equal(t, []string{"Жар", "Травмы"}, store.doc.Themes)
}

func TestImportInvalidFile(t *testing.T) {
	store := newStubStore()
	svc := NewImportService(store)

	ok, stats := svc.ImportFile(filepath.Join(t.TempDir(), "missing.xlsx"), ImportModeAppend)
	assert.False(t, ok)
	assert.Equal(t, "Файл не существует", stats.Error)
	assert.Zero(t, store.saveCalls)
}

func TestImportHeaderOnlyFile(t *testing.T) {
	path := writeImportFile(t, nil)

	store := newStubStore()
	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)

	assert.False(t, ok)
	assert.NotEmpty(t, stats.Error)
	assert.Zero(t, store.saveCalls)
}

func TestImportSaveFailureReported(t *testing.T) {
	path := writeImportFile(t, [][]string{
		{"", "Вопрос", "Ответ", "", "T", "", "", ""},
	})

	store := newStubStore()
	store.saveResult = storage.SaveResult{Local: false}

	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)
	assert.False(t, ok)
	assert.Equal(t, "Ошибка сохранения данных", stats.Error)
}

func TestImportCountsUnusableRows(t *testing.T) {
	path := writeImportFile(t, [][]string{
		{"", "Вопрос", "Ответ", "", "T", "", "", ""},
		// question and answer both empty
		{"", "", "", "", "Тема без карточки", "", "", ""},
		{"", "", "", "Пояснение без вопроса", "", "", "", ""},
	})

	store := newStubStore()
	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 2, stats.Errors)
}

func TestImportAppendOwnExportSkipsEverything(t *testing.T) {
	store := newStubStore()
	seedCards(store, entities.Card{
		ID:         1,
		Theme:      "A",
		Question:   "Q1?",
		Answer:     "A1",
		Difficulty: entities.DifficultyEasy,
	})

	buf, _, err := excel.NewExporter().Export(store.Load())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	// Re-importing a document's own export in append mode is a no-op:
	// every question matches by its normalized form
	ok, stats := NewImportService(store).ImportFile(path, ImportModeAppend)
	require.True(t, ok, stats.Error)

	assert.Equal(t, 0, stats.Imported)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Total)

	require.Len(t, store.doc.Cards, 1)
	assert.Equal(t, "Q1?", store.doc.Cards[0].Question)
	assert.Equal(t, 2, store.doc.NextID)
}

func TestExportImportRoundTrip(t *testing.T) {
	store := newStubStore()
	seedCards(store,
		entities.Card{ID: 1, Theme: "Травмы", Question: "Вопрос 1", Answer: "Ответ 1", Difficulty: entities.DifficultyEasy},
		entities.Card{ID: 2, Theme: "Жар", Question: "Вопрос 2", Answer: "Ответ 2", Difficulty: entities.DifficultyHard, Hidden: true},
	)

	buf, _, err := excel.NewExporter().Export(store.Load())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	fresh := newStubStore()
	ok, stats := NewImportService(fresh).ImportFile(path, ImportModeReplace)
	require.True(t, ok, stats.Error)

	require.Len(t, fresh.doc.Cards, 2)
	assert.Equal(t, "Вопрос 1", fresh.doc.Cards[0].Question)
	assert.Equal(t, entities.DifficultyEasy, fresh.doc.Cards[0].Difficulty)
	assert.Equal(t, entities.DifficultyHard, fresh.doc.Cards[1].Difficulty)
	assert.True(t, fresh.doc.Cards[1].Hidden)
	assert.Equal(t, []string{"Жар", "Травмы"}, fresh.doc.Themes)
}
