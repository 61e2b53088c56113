package services

import (
	"fmt"
	"strings"

	"github.com/mrlokans/cardbox/internal/entities"
	"github.com/mrlokans/cardbox/internal/storage"
)

// CardInput carries the user-editable fields of a card.
type CardInput struct {
	Theme       string
	Question    string
	Answer      string
	Explanation string
	Difficulty  string
	Hidden      bool
	Version     string
}

// CardFilter narrows the listing: an exact theme tag, a case-insensitive
// substring search over question and answer, and whether hidden cards are
// included.
type CardFilter struct {
	Theme         string
	Search        string
	IncludeHidden bool
}

// CardService implements card CRUD over the whole-document store.
type CardService struct {
	store DocumentStore
}

func NewCardService(store DocumentStore) *CardService {
	return &CardService{store: store}
}

// List returns the cards matching the filter together with the total count
// before filtering.
func (s *CardService) List(filter CardFilter) ([]entities.Card, int) {
	doc := s.store.Load()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var cards []entities.Card
	for _, card := range doc.Cards {
		if card.Hidden && !filter.IncludeHidden {
			continue
		}
		if filter.Theme != "" && !hasThemeTag(card, filter.Theme) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(card.Question), search) &&
			!strings.Contains(strings.ToLower(card.Answer), search) {
			continue
		}
		cards = append(cards, card)
	}
	return cards, len(doc.Cards)
}

// Get returns the card with the given identifier.
func (s *CardService) Get(id int) (*entities.Card, error) {
	doc := s.store.Load()
	card, _ := doc.FindCard(id)
	if card == nil {
		return nil, fmt.Errorf("card %d not found", id)
	}
	found := *card
	return &found, nil
}

// Themes returns the derived sorted theme set.
func (s *CardService) Themes() []string {
	return s.store.Load().ExtractThemes()
}

func validateInput(input CardInput) error {
	if strings.TrimSpace(input.Theme) == "" {
		return fmt.Errorf("theme is required")
	}
	if strings.TrimSpace(input.Question) == "" {
		return fmt.Errorf("question is required")
	}
	if strings.TrimSpace(input.Answer) == "" {
		return fmt.Errorf("answer is required")
	}
	return nil
}

func applyInput(card *entities.Card, input CardInput) {
	card.Theme = strings.TrimSpace(input.Theme)
	card.Question = strings.TrimSpace(input.Question)
	card.Answer = strings.TrimSpace(input.Answer)
	card.Explanation = strings.TrimSpace(input.Explanation)
	card.Difficulty = entities.ParseDifficulty(input.Difficulty)
	card.Hidden = input.Hidden
	card.Version = strings.TrimSpace(input.Version)
}

// Create appends a new card, assigning it the next_id watermark and
// advancing it. Themes are re-derived from the card set.
func (s *CardService) Create(input CardInput) (*entities.Card, storage.SaveResult, error) {
	if err := validateInput(input); err != nil {
		return nil, storage.SaveResult{}, err
	}

	doc := s.store.Load()

	card := entities.Card{ID: doc.NextID}
	applyInput(&card, input)

	doc.Cards = append(doc.Cards, card)
	doc.NextID++
	doc.Themes = doc.ExtractThemes()

	return &card, s.store.Save(doc), nil
}

// Update replaces the editable fields of an existing card.
func (s *CardService) Update(id int, input CardInput) (storage.SaveResult, error) {
	if err := validateInput(input); err != nil {
		return storage.SaveResult{}, err
	}

	doc := s.store.Load()
	card, _ := doc.FindCard(id)
	if card == nil {
		return storage.SaveResult{}, fmt.Errorf("card %d not found", id)
	}

	applyInput(card, input)
	doc.Themes = doc.ExtractThemes()

	return s.store.Save(doc), nil
}

// Delete removes a card from the document.
func (s *CardService) Delete(id int) (storage.SaveResult, error) {
	doc := s.store.Load()
	_, idx := doc.FindCard(id)
	if idx < 0 {
		return storage.SaveResult{}, fmt.Errorf("card %d not found", id)
	}

	doc.Cards = append(doc.Cards[:idx], doc.Cards[idx+1:]...)
	doc.Themes = doc.ExtractThemes()

	return s.store.Save(doc), nil
}

// ToggleHidden flips a card's visibility and returns the new state.
func (s *CardService) ToggleHidden(id int) (bool, storage.SaveResult, error) {
	doc := s.store.Load()
	card, _ := doc.FindCard(id)
	if card == nil {
		return false, storage.SaveResult{}, fmt.Errorf("card %d not found", id)
	}

	card.Hidden = !card.Hidden

	return card.Hidden, s.store.Save(doc), nil
}

func hasThemeTag(card entities.Card, theme string) bool {
	for _, tag := range card.ThemeTags() {
		if strings.EqualFold(tag, theme) {
			return true
		}
	}
	return false
}
