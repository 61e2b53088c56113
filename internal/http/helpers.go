package http

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/session"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates a positive integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (int, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}

// --- Page Rendering ---

// pageRenderer builds the template payload shared by every HTML page:
// flash messages and the CSRF form field.
type pageRenderer struct {
	sessions *session.Manager
}

func (r *pageRenderer) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if r.sessions != nil {
		data["Flashes"] = r.sessions.PopFlashes(c.Request)
	}
	data[session.CSRFTemplateField] = template.HTML(session.CSRFTokenField(c))
	if errMsg := c.Query("error"); errMsg != "" {
		data["QueryError"] = errMsg
	}
	c.HTML(status, name, data)
}

// flash queues a one-shot message for the next rendered page.
func (r *pageRenderer) flash(c *gin.Context, category, message string) {
	if r.sessions == nil {
		return
	}
	r.sessions.AddFlash(c.Request, category, message)
}
