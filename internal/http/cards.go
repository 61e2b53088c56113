package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/entities"
	"github.com/mrlokans/cardbox/internal/services"
	"github.com/mrlokans/cardbox/internal/storage"
)

var errSaveFailed = errors.New("failed to save card document")

// CardsController serves the card pages and the JSON card API.
type CardsController struct {
	cards    *services.CardService
	renderer *pageRenderer
	perPage  int
}

func NewCardsController(cards *services.CardService, renderer *pageRenderer, perPage int) *CardsController {
	if perPage <= 0 {
		perPage = 20
	}
	return &CardsController{cards: cards, renderer: renderer, perPage: perPage}
}

// IndexPage renders the card list with theme/search filters and pagination.
func (ctrl *CardsController) IndexPage(c *gin.Context) {
	filter := services.CardFilter{
		Theme:         c.Query("theme"),
		Search:        c.Query("search"),
		IncludeHidden: c.Query("show_hidden") == "1",
	}

	cards, total := ctrl.cards.List(filter)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	totalPages := (len(cards) + ctrl.perPage - 1) / ctrl.perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * ctrl.perPage
	end := start + ctrl.perPage
	if end > len(cards) {
		end = len(cards)
	}

	ctrl.renderer.render(c, http.StatusOK, "index", gin.H{
		"Cards":      cards[start:end],
		"Filtered":   len(cards),
		"Total":      total,
		"Themes":     ctrl.cards.Themes(),
		"Filter":     filter,
		"Page":       page,
		"TotalPages": totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	})
}

// CardPage renders a single card.
func (ctrl *CardsController) CardPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	card, err := ctrl.cards.Get(id)
	if err != nil {
		ctrl.renderer.render(c, http.StatusNotFound, "404", gin.H{})
		return
	}

	ctrl.renderer.render(c, http.StatusOK, "card_detail", gin.H{"Card": card})
}

// NewCardPage renders the creation form.
func (ctrl *CardsController) NewCardPage(c *gin.Context) {
	ctrl.renderer.render(c, http.StatusOK, "create_card", gin.H{
		"Themes": ctrl.cards.Themes(),
	})
}

// CreateCard handles the creation form submission.
func (ctrl *CardsController) CreateCard(c *gin.Context) {
	input := cardInputFromForm(c)

	card, result, err := ctrl.cards.Create(input)
	if err != nil {
		ctrl.renderer.flash(c, "error", "Заполните все обязательные поля")
		c.Redirect(http.StatusSeeOther, "/cards/new")
		return
	}

	ctrl.flashSaveResult(c, result)
	if result.Local {
		c.Redirect(http.StatusSeeOther, "/cards/"+strconv.Itoa(card.ID))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// EditCardPage renders the edit form.
func (ctrl *CardsController) EditCardPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	card, err := ctrl.cards.Get(id)
	if err != nil {
		ctrl.renderer.render(c, http.StatusNotFound, "404", gin.H{})
		return
	}

	ctrl.renderer.render(c, http.StatusOK, "edit_card", gin.H{
		"Card":   card,
		"Themes": ctrl.cards.Themes(),
	})
}

// UpdateCard handles the edit form submission.
func (ctrl *CardsController) UpdateCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	input := cardInputFromForm(c)

	result, err := ctrl.cards.Update(id, input)
	if err != nil {
		ctrl.renderer.flash(c, "error", "Заполните все обязательные поля")
		c.Redirect(http.StatusSeeOther, "/cards/"+strconv.Itoa(id)+"/edit")
		return
	}

	ctrl.flashSaveResult(c, result)
	c.Redirect(http.StatusSeeOther, "/cards/"+strconv.Itoa(id))
}

// DeleteCard removes a card and redirects to the list.
func (ctrl *CardsController) DeleteCard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := ctrl.cards.Delete(id)
	if err != nil {
		ctrl.renderer.flash(c, "error", "Карточка не найдена")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	ctrl.flashSaveResult(c, result)
	c.Redirect(http.StatusSeeOther, "/")
}

// ToggleHidden flips a card's visibility.
func (ctrl *CardsController) ToggleHidden(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	hidden, result, err := ctrl.cards.ToggleHidden(id)
	if err != nil {
		respondNotFound(c, "card")
		return
	}
	if !result.Local {
		respondInternalError(c, errSaveFailed, "toggle hidden")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "hidden": hidden, "message": result.Message()})
}

// ListCards returns the filtered card set as JSON.
func (ctrl *CardsController) ListCards(c *gin.Context) {
	filter := services.CardFilter{
		Theme:         c.Query("theme"),
		Search:        c.Query("search"),
		IncludeHidden: c.Query("show_hidden") == "1",
	}

	cards, total := ctrl.cards.List(filter)
	if cards == nil {
		cards = []entities.Card{}
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":  cards,
		"count":  len(cards),
		"total":  total,
		"themes": ctrl.cards.Themes(),
	})
}

func (ctrl *CardsController) flashSaveResult(c *gin.Context, result storage.SaveResult) {
	category := "success"
	if !result.Local {
		category = "error"
	} else if result.Remote != nil && !*result.Remote {
		category = "warning"
	}
	ctrl.renderer.flash(c, category, result.Message())
}

func cardInputFromForm(c *gin.Context) services.CardInput {
	return services.CardInput{
		Theme:       c.PostForm("theme"),
		Question:    c.PostForm("question"),
		Answer:      c.PostForm("answer"),
		Explanation: c.PostForm("explanation"),
		Difficulty:  c.PostForm("difficulty"),
		Hidden:      c.PostForm("hidden") == "on" || c.PostForm("hidden") == "1",
		Version:     c.PostForm("version"),
	}
}
