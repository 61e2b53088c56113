package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/excel"
	"github.com/mrlokans/cardbox/internal/storage"
)

// ExportController streams the card document as a formatted workbook.
type ExportController struct {
	store    *storage.HybridStore
	exporter *excel.Exporter
	renderer *pageRenderer
}

func NewExportController(store *storage.HybridStore, exporter *excel.Exporter, renderer *pageRenderer) *ExportController {
	return &ExportController{store: store, exporter: exporter, renderer: renderer}
}

// ExportExcel serves the whole card set as an xlsx attachment.
func (ctrl *ExportController) ExportExcel(c *gin.Context) {
	doc := ctrl.store.Load()

	buf, fileName, err := ctrl.exporter.Export(doc)
	if err != nil {
		if errors.Is(err, excel.ErrNoCards) {
			ctrl.renderer.flash(c, "warning", "Нет карточек для экспорта")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		respondInternalError(c, err, "excel export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
