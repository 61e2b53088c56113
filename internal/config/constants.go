package config

// Default paths and modes for card storage
const (
	// DefaultDataFilePath is the default path for the local card document
	DefaultDataFilePath = "./cards_data.json"

	// DefaultSessionDBPath is the default path for the session database
	DefaultSessionDBPath = "./sessions.db"

	// DefaultRemotePath is the default card file location on Yandex Disk
	DefaultRemotePath = "homeopathy_cards.json"

	// DefaultStorageMode keeps local and remote copies in sync
	DefaultStorageMode = "hybrid"
)
