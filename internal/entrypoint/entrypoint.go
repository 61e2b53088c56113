package entrypoint

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/cardbox/internal/config"
	"github.com/mrlokans/cardbox/internal/excel"
	http_controllers "github.com/mrlokans/cardbox/internal/http"
	"github.com/mrlokans/cardbox/internal/scheduler"
	"github.com/mrlokans/cardbox/internal/services"
	"github.com/mrlokans/cardbox/internal/session"
	"github.com/mrlokans/cardbox/internal/storage"
	"github.com/mrlokans/cardbox/internal/storage/providers/yandexdisk"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewHybridStore assembles the storage stack from configuration. The
// remote backend is attached only when a Yandex Disk token is present.
func NewHybridStore(cfg *config.Config) *storage.HybridStore {
	local := storage.NewLocalStore(cfg.Storage.DataFile)

	var remote storage.RemoteStore
	if cfg.YandexDisk.Token != "" {
		remote = yandexdisk.NewClient(cfg.YandexDisk.Token, cfg.YandexDisk.Path)
	}

	return storage.NewHybridStore(storage.ParseMode(cfg.Storage.Mode), local, remote)
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the cleanup scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Cardbox v%s", version)

	// Make sure the data and upload directories exist before anything
	// tries to write into them
	if dir := filepath.Dir(cfg.Storage.DataFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory %s: %v", dir, err)
		}
	}
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory %s: %v", cfg.Upload.Dir, err)
	}

	// Assemble the storage stack
	store := NewHybridStore(cfg)
	if cfg.YandexDisk.Token == "" {
		log.Printf("WARNING: Yandex Disk token is not set. Cards will only be stored locally. Set 'YANDEX_DISK_TOKEN' environment variable to enable sync.")
	}

	cardService := services.NewCardService(store)
	importService := services.NewImportService(store)
	exporter := excel.NewExporter()

	// Session store for flash messages
	sessionDB, err := sql.Open("sqlite3", cfg.Session.DBPath)
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}
	defer func() {
		if err := sessionDB.Close(); err != nil {
			log.Printf("Error closing session database: %v", err)
		}
	}()

	sessionManager, err := session.NewManager(sessionDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Session.Secret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Session.Secret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Session.Secret)
		}
	} else {
		secret, err := session.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set SESSION_SECRET to persist)")
	}

	// Periodic cleanup of abandoned spreadsheet uploads
	cleanupScheduler := scheduler.NewUploadCleanupScheduler(cfg.Upload)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: Failed to start upload cleanup scheduler: %v", err)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Store:          store,
		CardService:    cardService,
		ImportService:  importService,
		Exporter:       exporter,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Session.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		UploadDir:      cfg.Upload.Dir,
		CardsPerPage:   cfg.UI.CardsPerPage,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
	}

	Serve(router, cfg, onShutdown)
}
