package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/session"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(session.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadSave())
	}

	// Define custom template functions
	funcMap := template.FuncMap{
		"subtract": func(a, b int) int {
			return a - b
		},
		"add": func(a, b int) int {
			return a + b
		},
	}

	// Load HTML templates with custom functions
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.Static("/static", cfg.StaticPath)

	renderer := &pageRenderer{sessions: cfg.SessionManager}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Store, cfg.Version)
	cardsController := NewCardsController(cfg.CardService, renderer, cfg.CardsPerPage)
	importController := NewImportController(cfg.ImportService, renderer, cfg.UploadDir)
	exportController := NewExportController(cfg.Store, cfg.Exporter, renderer)
	settingsController := NewSettingsController(cfg.Store, renderer)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Card pages
	router.GET("/", cardsController.IndexPage)
	router.GET("/cards/new", cardsController.NewCardPage)
	router.POST("/cards", cardsController.CreateCard)
	router.GET("/cards/:id", cardsController.CardPage)
	router.GET("/cards/:id/edit", cardsController.EditCardPage)
	router.POST("/cards/:id", cardsController.UpdateCard)
	router.POST("/cards/:id/delete", cardsController.DeleteCard)
	router.POST("/cards/:id/toggle-hidden", cardsController.ToggleHidden)

	// Import pages
	router.GET("/import", importController.ImportPage)
	router.POST("/import/upload", importController.Upload)
	router.POST("/import/confirm", importController.Confirm)
	router.GET("/import/preview", importController.Preview)

	// Export endpoint
	router.GET("/export/excel", exportController.ExportExcel)

	// Storage settings
	router.GET("/settings/storage", settingsController.SettingsPage)
	router.POST("/settings/storage/sync", settingsController.SyncNow)

	// JSON API endpoints
	router.GET("/api/cards", cardsController.ListCards)
	router.GET("/api/storage/status", settingsController.StorageStatus)

	// Render the 404 page for anything unmatched
	router.NoRoute(func(c *gin.Context) {
		renderer.render(c, 404, "404", gin.H{})
	})

	return router
}
