package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Storage
		YandexDisk
		Upload
		UI
		Session
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Storage struct {
		Mode     string // local, remote or hybrid
		DataFile string // Path to the JSON card document
	}
	YandexDisk struct {
		Token string // OAuth token; empty disables the remote backend
		Path  string // File path on the disk, relative to the root
	}
	Upload struct {
		Dir             string
		RetentionHours  int    // Hours to keep uploaded spreadsheets (default: 24)
		CleanupSchedule string // Cron format: "0 * * * *" = hourly
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
		CardsPerPage  int
	}
	Session struct {
		DBPath        string
		Secret        string // CSRF secret; auto-generated if empty
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("storage_mode", DefaultStorageMode)
	v.SetDefault("data_file", DefaultDataFilePath)
	v.SetDefault("yandex_disk_token", "")
	v.SetDefault("yandex_disk_path", DefaultRemotePath)
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("upload_retention_hours", 24)
	v.SetDefault("upload_cleanup_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")
	v.SetDefault("cards_per_page", 20)

	// Session defaults
	v.SetDefault("session_db_path", DefaultSessionDBPath)
	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("secure_cookies", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Storage: Storage{
			Mode:     v.GetString("STORAGE_MODE"),
			DataFile: v.GetString("DATA_FILE"),
		},
		YandexDisk: YandexDisk{
			Token: v.GetString("YANDEX_DISK_TOKEN"),
			Path:  v.GetString("YANDEX_DISK_PATH"),
		},
		Upload: Upload{
			Dir:             v.GetString("UPLOAD_DIR"),
			RetentionHours:  v.GetInt("UPLOAD_RETENTION_HOURS"),
			CleanupSchedule: v.GetString("UPLOAD_CLEANUP_SCHEDULE"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
			CardsPerPage:  v.GetInt("CARDS_PER_PAGE"),
		},
		Session: Session{
			DBPath:        v.GetString("SESSION_DB_PATH"),
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
