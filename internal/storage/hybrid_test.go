package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/cardbox/internal/entities"
)

// stubRemote implements RemoteStore for testing
type stubRemote struct {
	doc       *entities.Document
	loadErr   error
	saveOK    bool
	connected bool

	loadCalls int
	saveCalls int
	savedDoc  *entities.Document
}

func (s *stubRemote) Load() (*entities.Document, error) {
	s.loadCalls++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.doc == nil {
		return entities.NewDocument(), nil
	}
	return s.doc, nil
}

func (s *stubRemote) Save(doc *entities.Document) bool {
	s.saveCalls++
	s.savedDoc = doc
	return s.saveOK
}

func (s *stubRemote) FileExists() bool { return s.doc != nil }
func (s *stubRemote) TestConnection() bool { return s.connected }

func newTestLocal(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocalStore(filepath.Join(t.TempDir(), "cards.json"))
}

func docWithCards(n int) *entities.Document {
	doc := entities.NewDocument()
	for i := 1; i <= n; i++ {
		doc.Cards = append(doc.Cards, entities.Card{
			ID:         i,
			Theme:      "Тема",
			Question:   "Q",
			Answer:     "A",
			Difficulty: entities.DifficultyMedium,
		})
	}
	doc.NextID = n + 1
	return doc
}

func TestHybridLocalModeNeverTouchesRemote(t *testing.T) {
	remote := &stubRemote{doc: docWithCards(3), saveOK: true}
	store := NewHybridStore(ModeLocal, newTestLocal(t), remote)

	store.Load()
	result := store.Save(docWithCards(1))

	assert.Zero(t, remote.loadCalls)
	assert.Zero(t, remote.saveCalls)
	assert.True(t, result.Local)
	assert.Nil(t, result.Remote)
}

func TestHybridLoadPrefersRemote(t *testing.T) {
	local := newTestLocal(t)
	require.True(t, local.Save(docWithCards(1)))

	remote := &stubRemote{doc: docWithCards(5)}
	store := NewHybridStore(ModeHybrid, local, remote)

	doc := store.Load()
	assert.Len(t, doc.Cards, 5)
	assert.Equal(t, 1, remote.loadCalls)
}

func TestHybridLoadRefreshesLocalCache(t *testing.T) {
	local := newTestLocal(t)
	remote := &stubRemote{doc: docWithCards(4)}
	store := NewHybridStore(ModeHybrid, local, remote)

	store.Load()

	cached := local.Load()
	assert.Len(t, cached.Cards, 4)
}

func TestHybridLoadEmptyRemoteKeepsLocalCache(t *testing.T) {
	local := newTestLocal(t)
	require.True(t, local.Save(docWithCards(3)))

	// Remote file does not exist yet: Load yields an empty default document
	remote := &stubRemote{}
	store := NewHybridStore(ModeHybrid, local, remote)

	doc := store.Load()
	assert.Empty(t, doc.Cards)

	// The empty remote result must not clobber the local copy
	cached := local.Load()
	assert.Len(t, cached.Cards, 3)
}

func TestHybridLoadFallsBackToLocalOnRemoteError(t *testing.T) {
	local := newTestLocal(t)
	require.True(t, local.Save(docWithCards(2)))

	remote := &stubRemote{loadErr: errors.New("network down")}
	store := NewHybridStore(ModeHybrid, local, remote)

	doc := store.Load()
	assert.Len(t, doc.Cards, 2)
}

func TestHybridRemoteModeFallsBackToLocalToo(t *testing.T) {
	local := newTestLocal(t)
	require.True(t, local.Save(docWithCards(2)))

	remote := &stubRemote{loadErr: errors.New("network down")}
	store := NewHybridStore(ModeRemote, local, remote)

	doc := store.Load()
	assert.Len(t, doc.Cards, 2)
}

func TestHybridSaveWritesBothBackends(t *testing.T) {
	local := newTestLocal(t)
	remote := &stubRemote{saveOK: true}
	store := NewHybridStore(ModeHybrid, local, remote)

	result := store.Save(docWithCards(2))

	assert.True(t, result.Local)
	require.NotNil(t, result.Remote)
	assert.True(t, *result.Remote)
	assert.True(t, result.Synced())
	assert.Equal(t, 1, remote.saveCalls)
	assert.Len(t, local.Load().Cards, 2)
}

func TestHybridSaveRemoteFailureKeepsLocalResult(t *testing.T) {
	local := newTestLocal(t)
	remote := &stubRemote{saveOK: false}
	store := NewHybridStore(ModeHybrid, local, remote)

	result := store.Save(docWithCards(1))

	assert.True(t, result.Local)
	require.NotNil(t, result.Remote)
	assert.False(t, *result.Remote)
	assert.False(t, result.Synced())
}

func TestHybridNilRemoteDegradesToLocal(t *testing.T) {
	store := NewHybridStore(ModeHybrid, newTestLocal(t), nil)

	result := store.Save(docWithCards(1))
	assert.True(t, result.Local)
	assert.Nil(t, result.Remote)

	doc := store.Load()
	assert.Len(t, doc.Cards, 1)

	assert.False(t, store.SyncToRemote())
}

func TestHybridSyncToRemotePushesLocalCopy(t *testing.T) {
	local := newTestLocal(t)
	require.True(t, local.Save(docWithCards(2)))

	remote := &stubRemote{saveOK: true}
	store := NewHybridStore(ModeHybrid, local, remote)

	assert.True(t, store.SyncToRemote())
	require.NotNil(t, remote.savedDoc)
	assert.Len(t, remote.savedDoc.Cards, 2)
}

func TestHybridStatus(t *testing.T) {
	local := newTestLocal(t)
	doc := docWithCards(2)
	doc.Themes = doc.ExtractThemes()
	require.True(t, local.Save(doc))

	remote := &stubRemote{connected: true}
	store := NewHybridStore(ModeHybrid, local, remote)

	status := store.Status()
	assert.Equal(t, ModeHybrid, status.Mode)
	assert.True(t, status.LocalExists)
	assert.True(t, status.RemoteSet)
	assert.True(t, status.RemoteConnected)
	assert.Equal(t, 2, status.CardCount)
	assert.Equal(t, []string{"Тема"}, status.Themes)
}

func TestSaveResultMessage(t *testing.T) {
	ok := true
	failed := false

	tests := []struct {
		name     string
		result   SaveResult
		expected string
	}{
		{"local only", SaveResult{Local: true}, "Сохранено локально"},
		{"synced", SaveResult{Local: true, Remote: &ok}, "Сохранено и синхронизировано с Яндекс.Диском"},
		{"remote failed", SaveResult{Local: true, Remote: &failed}, "Сохранено локально, синхронизация с Яндекс.Диском не удалась"},
		{"local failed", SaveResult{Local: false}, "Ошибка сохранения данных"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.Message())
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeLocal, ParseMode("local"))
	assert.Equal(t, ModeRemote, ParseMode("REMOTE"))
	assert.Equal(t, ModeHybrid, ParseMode("hybrid"))
	assert.Equal(t, ModeHybrid, ParseMode("whatever"))
	assert.Equal(t, ModeHybrid, ParseMode(""))
}
