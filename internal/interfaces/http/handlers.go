package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/domain/entity"
	"github.com/kdninv/nota-api/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	authService      service.AuthService
	pengajuanService service.PengajuanService
	userService      service.UserService
	rekeningService  service.RekeningService
	pushService      service.PushService
	store            port.AttachmentStore
	uploadFolder     string
	tokens           *auth.TokenManager
	secureCookies    bool
	logger           Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, tokens *auth.TokenManager, secureCookies bool, logger Logger) *Handlers {
	return &Handlers{
		authService:      services.Auth,
		pengajuanService: services.Pengajuan,
		userService:      services.Users,
		rekeningService:  services.Rekening,
		pushService:      services.Push,
		store:            services.Store,
		uploadFolder:     services.Folder,
		tokens:           tokens,
		secureCookies:    secureCookies,
		logger:           logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// fail maps a domain error onto a status code. Sentinel messages are
// user-facing Indonesian; anything unexpected hides behind a generic 500.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "terjadi kesalahan server"

	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, entity.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrInvalidState):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{Success: false, Error: message})
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handlers) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}
