package entities

import (
	"sort"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a stored difficulty value to a known level,
// falling back to medium for anything unrecognized.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Label returns the human-readable (Russian) label used in the UI
// and in spreadsheet exports.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Легкий"
	case DifficultyHard:
		return "Сложный"
	default:
		return "Средний"
	}
}

// Card is a single question/answer study card.
// Theme may hold several comma-separated tags.
type Card struct {
	ID          int        `json:"id"`
	Theme       string     `json:"theme"`
	Question    string     `json:"question"`
	Answer      string     `json:"answer"`
	Explanation string     `json:"explanation,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Hidden      bool       `json:"hidden"`
	Version     string     `json:"version,omitempty"`
}

// HiddenLabel returns the localized yes/no label used in exports.
func (c Card) HiddenLabel() string {
	if c.Hidden {
		return "Да"
	}
	return "Нет"
}

// ThemeTags splits the card's theme field into individual trimmed tags.
func (c Card) ThemeTags() []string {
	var tags []string
	for _, part := range strings.Split(c.Theme, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Document is the whole persisted card collection. It is always read and
// written as a unit; Themes is a derived projection over Cards kept for
// compatibility with the stored format.
type Document struct {
	Cards  []Card   `json:"cards"`
	Themes []string `json:"themes"`
	NextID int      `json:"next_id"`
}

// NewDocument returns an empty document with the ID watermark at 1.
func NewDocument() *Document {
	return &Document{
		Cards:  []Card{},
		Themes: []string{},
		NextID: 1,
	}
}

// Normalize fills in defaults for fields older documents may lack.
func (d *Document) Normalize() {
	if d.Cards == nil {
		d.Cards = []Card{}
	}
	if d.Themes == nil {
		d.Themes = []string{}
	}
	if d.NextID < 1 {
		d.NextID = 1
	}
	for i := range d.Cards {
		d.Cards[i].Difficulty = ParseDifficulty(string(d.Cards[i].Difficulty))
	}
}

// ExtractThemes recomputes the sorted set of theme tags across all cards.
func (d *Document) ExtractThemes() []string {
	seen := make(map[string]struct{})
	for _, card := range d.Cards {
		for _, tag := range card.ThemeTags() {
			seen[tag] = struct{}{}
		}
	}
	themes := make([]string, 0, len(seen))
	for tag := range seen {
		themes = append(themes, tag)
	}
	sort.Strings(themes)
	return themes
}

// MaxID returns the highest card identifier in the document.
func (d *Document) MaxID() int {
	maxID := 0
	for _, card := range d.Cards {
		if card.ID > maxID {
			maxID = card.ID
		}
	}
	return maxID
}

// FindCard returns the card with the given ID and its index, or nil.
func (d *Document) FindCard(id int) (*Card, int) {
	for i := range d.Cards {
		if d.Cards[i].ID == id {
			return &d.Cards[i], i
		}
	}
	return nil, -1
}

// SortByID orders the cards by their identifiers.
func (d *Document) SortByID() {
	sort.Slice(d.Cards, func(i, j int) bool {
		return d.Cards[i].ID < d.Cards[j].ID
	})
}
