package storage

import (
	"strings"

	"github.com/mrlokans/cardbox/internal/entities"
)

// Mode selects which backends the hybrid store arbitrates between.
type Mode string

const (
	ModeLocal  Mode = "local"  // local file only
	ModeRemote Mode = "remote" // remote disk is authoritative, local file is a cache
	ModeHybrid Mode = "hybrid" // remote first, local fallback
)

// ParseMode maps a configured mode string to a known Mode,
// defaulting to hybrid for anything unrecognized.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLocal:
		return ModeLocal
	case ModeRemote:
		return ModeRemote
	default:
		return ModeHybrid
	}
}

// RemoteStore is the contract a cloud-disk backend has to satisfy.
// Load returns an error only for protocol or network failures; a missing
// remote file is not an error and yields an empty default document. Save
// converts every failure to a false result.
type RemoteStore interface {
	Load() (*entities.Document, error)
	Save(doc *entities.Document) bool
	FileExists() bool
	TestConnection() bool
}

// SaveResult reports the outcome of a hybrid save. Local is the
// authoritative flag; Remote is nil when no remote write was attempted.
type SaveResult struct {
	Local  bool
	Remote *bool
}

// Synced reports whether a remote write was attempted and succeeded.
func (r SaveResult) Synced() bool {
	return r.Remote != nil && *r.Remote
}

// Message returns the user-facing three-way outcome description.
func (r SaveResult) Message() string {
	switch {
	case !r.Local:
		return "Ошибка сохранения данных"
	case r.Remote == nil:
		return "Сохранено локально"
	case *r.Remote:
		return "Сохранено и синхронизировано с Яндекс.Диском"
	default:
		return "Сохранено локально, синхронизация с Яндекс.Диском не удалась"
	}
}

// Status describes the state of the configured storage backends.
type Status struct {
	Mode            Mode     `json:"mode"`
	LocalPath       string   `json:"local_path"`
	LocalExists     bool     `json:"local_exists"`
	RemotePath      string   `json:"remote_path,omitempty"`
	RemoteSet       bool     `json:"remote_configured"`
	RemoteConnected bool     `json:"remote_connected"`
	CardCount       int      `json:"card_count"`
	Themes          []string `json:"themes"`
}
