package session

import (
	"crypto/rand"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/cardbox/internal/config"
)

// Session data keys
const (
	SessionKeyFlashes = "flashes"
)

// Flash categories map to the alert styles in templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	// Register types that will be stored in sessions
	gob.Register([]Flash{})
}

// Manager wraps scs.SessionManager with flash message helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager backed by SQLite.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()

	// Configure session store (SQLite)
	store := sqlite3store.New(sqlDB)
	sm.Store = store

	// Configure session lifetime
	sm.Lifetime = cfg.Lifetime
	sm.IdleTimeout = cfg.Lifetime / 2 // Half of lifetime for inactivity

	// Configure cookie security
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so redirects keep the flash
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// AddFlash queues a message for the next rendered page.
func (sm *Manager) AddFlash(r *http.Request, category, message string) {
	flashes, _ := sm.Get(r.Context(), SessionKeyFlashes).([]Flash)
	flashes = append(flashes, Flash{Category: category, Message: message})
	sm.Put(r.Context(), SessionKeyFlashes, flashes)
}

// PopFlashes returns all queued messages and clears them.
func (sm *Manager) PopFlashes(r *http.Request) []Flash {
	flashes, _ := sm.Pop(r.Context(), SessionKeyFlashes).([]Flash)
	return flashes
}

// GenerateSecret produces a random 32-byte hex secret for CSRF signing.
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
