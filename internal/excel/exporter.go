package excel

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/cardbox/internal/entities"
)

// ErrNoCards is returned when an export is requested for an empty collection.
var ErrNoCards = errors.New("no cards to export")

const (
	sheetName = "Карточки"

	headerColor = "4A6FA5"
	hiddenColor = "F5F5F5"

	fontName       = "Calibri"
	fontSize       = 11.0
	headerFontSize = 12.0

	minColumnWidth = 5.0
	maxColumnWidth = 50.0
	charWidth      = 1.2

	headerRowHeight = 30.0
	minRowHeight    = 15.0
	maxRowHeight    = 100.0
	pixelsPerLine   = 15.0
	lineSpacing     = 1.2

	filenamePrefix = "homeopathy_cards"
)

// Headers is the fixed column layout shared by the exporter and importer.
var Headers = []string{"№", "Вопрос", "Ответ", "Объяснение", "Тема", "Сложность", "Скрытый", "Версия"}

// difficultyColors maps each difficulty to its row background shade.
var difficultyColors = map[entities.Difficulty]string{
	entities.DifficultyEasy:   "E8F5E8",
	entities.DifficultyMedium: "FFF3E0",
	entities.DifficultyHard:   "FFEBEE",
}

// centeredColumns are rendered center/middle; the rest are left/top.
var centeredColumns = map[int]bool{0: true, 5: true, 6: true, 7: true}

// fixedWidths overrides the computed width for constant-content columns.
var fixedWidths = map[int]float64{5: 15, 6: 15, 7: 12}

// minWidths is the per-column floor for computed widths.
var minWidths = map[int]float64{0: 6, 1: 15, 2: 15, 3: 15, 4: 12}

// Exporter renders a card document into a styled xlsx workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Filename generates the download name: a fixed prefix plus the current
// time truncated to the minute.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("%s_%s.xlsx", filenamePrefix, time.Now().Format("2006-01-02_15-04"))
}

// Export renders the document into an xlsx workbook and returns the file
// bytes together with a generated filename. Exporting an empty collection
// is an error rather than an empty file.
func (e *Exporter) Export(doc *entities.Document) (*bytes.Buffer, string, error) {
	if doc == nil || len(doc.Cards) == 0 {
		return nil, "", ErrNoCards
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", fmt.Errorf("failed to set up sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create styles: %w", err)
	}

	rows := renderRows(doc.Cards)
	widths := columnWidths(rows)

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, "", fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := e.writeHeader(f, styles); err != nil {
		return nil, "", err
	}
	if err := e.writeRows(f, doc.Cards, rows, styles); err != nil {
		return nil, "", err
	}

	for i := range doc.Cards {
		if err := f.SetRowHeight(sheetName, i+2, rowHeight(rows[i], widths)); err != nil {
			return nil, "", fmt.Errorf("failed to set row height: %w", err)
		}
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(Headers), len(doc.Cards)+1)
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		return nil, "", fmt.Errorf("failed to set autofilter: %w", err)
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, "", fmt.Errorf("failed to freeze header row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	log.Printf("excel: exported %d cards", len(doc.Cards))
	return buf, e.Filename(), nil
}

func (e *Exporter) writeHeader(f *excelize.File, styles *styleSet) error {
	for col, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, styles.header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}
	return f.SetRowHeight(sheetName, 1, headerRowHeight)
}

func (e *Exporter) writeRows(f *excelize.File, cards []entities.Card, rows [][]string, styles *styleSet) error {
	for i, card := range cards {
		for col, value := range rows[i] {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, styles.forCell(card, col)); err != nil {
				return fmt.Errorf("failed to style row %d: %w", i+2, err)
			}
		}
	}
	return nil
}

// renderRows converts cards into the fixed 8-column string layout.
func renderRows(cards []entities.Card) [][]string {
	rows := make([][]string, len(cards))
	for i, card := range cards {
		rows[i] = []string{
			fmt.Sprintf("%d", card.ID),
			CleanText(card.Question),
			CleanText(card.Answer),
			CleanText(card.Explanation),
			CleanText(card.Theme),
			card.Difficulty.Label(),
			card.HiddenLabel(),
			CleanText(card.Version),
		}
	}
	return rows
}

// columnWidths computes per-column widths from the longest rendered line,
// clamped to the configured bounds. Constant-content columns keep their
// fixed widths regardless of content.
func columnWidths(rows [][]string) []float64 {
	maxLens := make([]int, len(Headers))
	for i, header := range Headers {
		maxLens[i] = len([]rune(header))
	}
	for _, row := range rows {
		for col, value := range row {
			if l := longestLine(value); l > maxLens[col] {
				maxLens[col] = l
			}
		}
	}

	widths := make([]float64, len(Headers))
	for col := range Headers {
		if fixed, ok := fixedWidths[col]; ok {
			widths[col] = fixed
			continue
		}
		floor := minWidths[col]
		if floor < minColumnWidth {
			floor = minColumnWidth
		}
		width := float64(maxLens[col]+2) * charWidth
		if width < floor {
			width = floor
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		widths[col] = width
	}
	return widths
}

// longestLine returns the rune length of the longest embedded line.
func longestLine(s string) int {
	longest := 0
	for _, line := range strings.Split(s, "\n") {
		if l := len([]rune(line)); l > longest {
			longest = l
		}
	}
	return longest
}

// rowHeight estimates the pixel height a row needs: the number of visual
// lines its text occupies at each column's character width, times a fixed
// per-line pixel constant and spacing multiplier, clamped.
func rowHeight(row []string, widths []float64) float64 {
	maxLines := 1
	for col, value := range row {
		if centeredColumns[col] || value == "" {
			continue
		}
		if lines := visualLines(value, int(widths[col])); lines > maxLines {
			maxLines = lines
		}
	}

	height := float64(maxLines)*pixelsPerLine*lineSpacing + 10
	if height < minRowHeight {
		return minRowHeight
	}
	if height > maxRowHeight {
		return maxRowHeight
	}
	return height
}

// visualLines counts how many wrapped lines a cell's text occupies at the
// given column width in characters.
func visualLines(s string, widthChars int) int {
	if widthChars <= 0 {
		return strings.Count(s, "\n") + 1
	}
	total := 0
	for _, line := range strings.Split(s, "\n") {
		length := len([]rune(line))
		if length == 0 {
			total++
			continue
		}
		total += (length + widthChars - 1) / widthChars
	}
	if total < 1 {
		total = 1
	}
	return total
}

// styleSet holds the precomputed style IDs for the workbook.
type styleSet struct {
	header   int
	data     map[string]int // fill color -> left/top style
	centered map[string]int // fill color -> centered style
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Family: fontName, Size: headerFontSize},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	set := &styleSet{
		header:   header,
		data:     make(map[string]int),
		centered: make(map[string]int),
	}

	fills := []string{hiddenColor}
	for _, color := range difficultyColors {
		fills = append(fills, color)
	}

	for _, fill := range fills {
		data, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Family: fontName, Size: fontSize},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
			Border:    border,
		})
		if err != nil {
			return nil, err
		}
		set.data[fill] = data

		centered, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Family: fontName, Size: fontSize},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		})
		if err != nil {
			return nil, err
		}
		set.centered[fill] = centered
	}

	return set, nil
}

// forCell picks the style for a card's cell. Hidden cards always get the
// hidden shade; otherwise the shade follows the difficulty.
func (s *styleSet) forCell(card entities.Card, col int) int {
	fill := difficultyColors[entities.ParseDifficulty(string(card.Difficulty))]
	if card.Hidden {
		fill = hiddenColor
	}
	if centeredColumns[col] {
		return s.centered[fill]
	}
	return s.data[fill]
}
