package http

import (
	"github.com/mrlokans/cardbox/internal/excel"
	"github.com/mrlokans/cardbox/internal/services"
	"github.com/mrlokans/cardbox/internal/session"
	"github.com/mrlokans/cardbox/internal/storage"
)

// RouterConfig holds all dependencies needed by NewRouter.
// Using a config struct improves testability and reduces parameter count.
type RouterConfig struct {
	// Core dependencies
	Store         *storage.HybridStore
	CardService   *services.CardService
	ImportService *services.ImportService
	Exporter      *excel.Exporter

	// Sessions and CSRF
	SessionManager *session.Manager
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Upload handling
	UploadDir string

	// Pagination
	CardsPerPage int

	// Application info
	Version string
}
