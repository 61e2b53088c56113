package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/excel"
	"github.com/mrlokans/cardbox/internal/services"
)

const previewRowLimit = 10

// ImportController handles spreadsheet uploads: a preview step first, then
// the actual import in either append or replace mode. Uploaded files are
// kept in the upload directory between the two steps and removed after a
// successful import.
type ImportController struct {
	imports   *services.ImportService
	renderer  *pageRenderer
	uploadDir string
}

func NewImportController(imports *services.ImportService, renderer *pageRenderer, uploadDir string) *ImportController {
	return &ImportController{imports: imports, renderer: renderer, uploadDir: uploadDir}
}

// ImportPage renders the upload form.
func (ctrl *ImportController) ImportPage(c *gin.Context) {
	ctrl.renderer.render(c, http.StatusOK, "import", gin.H{
		"MaxFileSizeMB": excel.MaxFileSize / (1024 * 1024),
		"MaxRows":       excel.MaxImportRows,
	})
}

// Upload receives the spreadsheet, validates it and shows a preview page.
func (ctrl *ImportController) Upload(c *gin.Context) {
	path, err := ctrl.saveUpload(c)
	if err != nil {
		ctrl.renderer.flash(c, "error", err.Error())
		c.Redirect(http.StatusSeeOther, "/import")
		return
	}

	if ok, message := ctrl.imports.ValidateFile(path); !ok {
		os.Remove(path)
		ctrl.renderer.flash(c, "error", message)
		c.Redirect(http.StatusSeeOther, "/import")
		return
	}

	preview, err := ctrl.imports.Preview(path, previewRowLimit)
	if err != nil {
		os.Remove(path)
		ctrl.renderer.flash(c, "error", fmt.Sprintf("Не удалось прочитать файл: %v", err))
		c.Redirect(http.StatusSeeOther, "/import")
		return
	}

	ctrl.renderer.render(c, http.StatusOK, "import_preview", gin.H{
		"Preview":  preview,
		"FileName": filepath.Base(path),
	})
}

// Confirm runs the import for a previously uploaded file.
func (ctrl *ImportController) Confirm(c *gin.Context) {
	fileName := filepath.Base(c.PostForm("file_name"))
	if fileName == "" || fileName == "." {
		ctrl.renderer.flash(c, "error", "Файл не указан")
		c.Redirect(http.StatusSeeOther, "/import")
		return
	}

	path := filepath.Join(ctrl.uploadDir, fileName)
	mode := services.ParseImportMode(c.PostForm("mode"))

	ok, stats := ctrl.imports.ImportFile(path, mode)
	if !ok {
		ctrl.renderer.flash(c, "error", stats.Error)
		c.Redirect(http.StatusSeeOther, "/import")
		return
	}

	os.Remove(path)

	message := fmt.Sprintf("Импортировано карточек: %d", stats.Imported)
	if stats.Skipped > 0 {
		message += fmt.Sprintf(", пропущено дубликатов: %d", stats.Skipped)
	}
	ctrl.renderer.flash(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/")
}

// Preview returns the preview as JSON for AJAX clients.
func (ctrl *ImportController) Preview(c *gin.Context) {
	fileName := filepath.Base(c.Query("file_name"))
	if fileName == "" || fileName == "." {
		respondBadRequest(c, "file_name is required")
		return
	}

	preview, err := ctrl.imports.Preview(filepath.Join(ctrl.uploadDir, fileName), previewRowLimit)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, preview)
}

// saveUpload stores the submitted spreadsheet under the upload directory
// with a timestamped name and returns its path.
func (ctrl *ImportController) saveUpload(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("Файл не выбран")
	}
	defer file.Close()

	if header.Size > excel.MaxFileSize {
		return "", fmt.Errorf("Файл слишком большой (максимум %d MB)", excel.MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		return "", fmt.Errorf("Поддерживаются только файлы Excel (.xlsx, .xls)")
	}

	if err := os.MkdirAll(ctrl.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("Не удалось сохранить файл")
	}

	name := fmt.Sprintf("import_%s%s", time.Now().Format("20060102_150405"), ext)
	destPath := filepath.Join(ctrl.uploadDir, name)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("Не удалось сохранить файл")
	}
	defer dest.Close()

	limited := io.LimitReader(file, excel.MaxFileSize+1)
	written, err := io.Copy(dest, limited)
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("Не удалось сохранить файл")
	}
	if written > excel.MaxFileSize {
		os.Remove(destPath)
		return "", fmt.Errorf("Файл слишком большой (максимум %d MB)", excel.MaxFileSize/(1024*1024))
	}

	return destPath, nil
}
