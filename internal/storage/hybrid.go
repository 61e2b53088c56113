package storage

import (
	"log"

	"github.com/mrlokans/cardbox/internal/entities"
)

// HybridStore presents a single load/save contract over the local file and
// an optional remote disk backend. Whether a remote is configured is
// resolved once at construction: a nil remote degrades every mode to
// local-only, so callers never have to re-check credentials per call.
type HybridStore struct {
	mode   Mode
	local  *LocalStore
	remote RemoteStore
}

// NewHybridStore wires the local store and the (possibly nil) remote store
// under the given mode.
func NewHybridStore(mode Mode, local *LocalStore, remote RemoteStore) *HybridStore {
	if remote == nil && mode != ModeLocal {
		log.Printf("storage: %s mode requested but no remote configured, using local only", mode)
	}
	return &HybridStore{
		mode:   mode,
		local:  local,
		remote: remote,
	}
}

// Mode returns the configured storage mode.
func (s *HybridStore) Mode() Mode {
	return s.mode
}

// remoteActive reports whether remote operations should be attempted.
func (s *HybridStore) remoteActive() bool {
	return s.remote != nil && (s.mode == ModeRemote || s.mode == ModeHybrid)
}

// Load returns the document according to the configured mode. In remote and
// hybrid modes a successful remote load refreshes the local cache; a failed
// remote load falls back to the local copy. A remote 404 is a successful
// load of an empty default document, not a failure.
func (s *HybridStore) Load() *entities.Document {
	if !s.remoteActive() {
		return s.local.Load()
	}

	doc, err := s.remote.Load()
	if err != nil {
		log.Printf("storage: remote load failed (%v), using local copy", err)
		return s.local.Load()
	}

	// Refresh the local cache so hybrid mode has something to fall back
	// to next time. An empty document from a not-yet-created remote file
	// must not clobber an existing local copy.
	if len(doc.Cards) > 0 {
		s.local.Save(doc)
	}
	return doc
}

// Save writes to the local store first (that result is authoritative for
// the caller's durability expectations) and then, when the mode includes a
// configured remote, attempts the remote write. A remote failure never
// negates the local outcome.
func (s *HybridStore) Save(doc *entities.Document) SaveResult {
	result := SaveResult{
		Local: s.local.Save(doc),
	}

	if s.remoteActive() {
		ok := s.remote.Save(doc)
		result.Remote = &ok
		if !ok {
			log.Printf("storage: remote save failed, local copy is up to date")
		}
	}

	return result
}

// Status reports the state of both backends. Document inspection is
// best-effort: failures produce zeroed values, never errors.
func (s *HybridStore) Status() Status {
	status := Status{
		Mode:        s.mode,
		LocalPath:   s.local.Path(),
		LocalExists: s.local.Exists(),
		RemoteSet:   s.remote != nil,
		Themes:      []string{},
	}

	if s.remote != nil {
		status.RemoteConnected = s.remote.TestConnection()
	}

	doc := s.local.Load()
	status.CardCount = len(doc.Cards)
	status.Themes = doc.Themes

	return status
}

// SyncToRemote pushes the local copy to the remote disk. Used by the manual
// sync endpoint; returns false when no remote is configured.
func (s *HybridStore) SyncToRemote() bool {
	if s.remote == nil {
		return false
	}
	return s.remote.Save(s.local.Load())
}
