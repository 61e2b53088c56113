package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/cardbox/internal/storage"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	store   *storage.HybridStore
	version string
}

func NewHealthController(store *storage.HybridStore, version string) *HealthController {
	return &HealthController{
		store:   store,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.store != nil {
		st := h.store.Status()
		if st.LocalExists {
			checks["local_storage"] = "ok"
		} else {
			checks["local_storage"] = "no data file yet"
		}
		switch {
		case !st.RemoteSet:
			checks["remote_storage"] = "not configured"
		case st.RemoteConnected:
			checks["remote_storage"] = "ok"
		default:
			checks["remote_storage"] = "unreachable"
			if st.Mode == storage.ModeRemote {
				status = "unhealthy"
			}
		}
	} else {
		checks["storage"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
