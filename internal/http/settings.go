package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/storage"
)

// SettingsController shows storage status and triggers manual sync.
type SettingsController struct {
	store    *storage.HybridStore
	renderer *pageRenderer
}

func NewSettingsController(store *storage.HybridStore, renderer *pageRenderer) *SettingsController {
	return &SettingsController{store: store, renderer: renderer}
}

// SettingsPage renders the storage settings page.
func (ctrl *SettingsController) SettingsPage(c *gin.Context) {
	ctrl.renderer.render(c, http.StatusOK, "storage_settings", gin.H{
		"Status": ctrl.store.Status(),
	})
}

// SyncNow pushes the local document to the remote backend.
func (ctrl *SettingsController) SyncNow(c *gin.Context) {
	if ctrl.store.SyncToRemote() {
		ctrl.renderer.flash(c, "success", "Данные синхронизированы с Яндекс.Диском")
	} else {
		ctrl.renderer.flash(c, "error", "Синхронизация с Яндекс.Диском не удалась")
	}
	c.Redirect(http.StatusSeeOther, "/settings/storage")
}

// StorageStatus returns the storage status as JSON.
func (ctrl *SettingsController) StorageStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.store.Status())
}
