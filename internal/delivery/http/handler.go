package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastylog/backend/internal/domain"
	"github.com/tastylog/backend/internal/usecase"
)

// maxUploadBytes caps multipart image uploads
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	auth   *usecase.AuthService
	media  *usecase.MediaService
	foods  *usecase.FoodRepository
	placer *usecase.Placer
}

// NewHandler creates a new HTTP handler
func NewHandler(
	auth *usecase.AuthService,
	media *usecase.MediaService,
	foods *usecase.FoodRepository,
	placer *usecase.Placer,
) *Handler {
	return &Handler{
		auth:   auth,
		media:  media,
		foods:  foods,
		placer: placer,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tastylog-backend",
		"version": "1.0.0",
	})
}

// viewerID resolves the owner for read-only views. A missing or rejected
// session is the logged-out case and yields an empty owner.
func (h *Handler) viewerID(c *gin.Context) (string, bool) {
	if domain.SessionFromContext(c.Request.Context()) == "" {
		return "", true
	}
	account, err := h.auth.CurrentAccount(c.Request.Context())
	if errors.Is(err, domain.ErrUnauthorized) {
		return "", true
	}
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return account.ID, true
}

// ownerID resolves the owner for mutations, answering 401 when there is none
func (h *Handler) ownerID(c *gin.Context) (string, bool) {
	account, err := h.auth.CurrentAccount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return account.ID, true
}

// snapshot returns the viewer's records for the derived views
func (h *Handler) snapshot(c *gin.Context) ([]domain.FoodRecord, bool) {
	owner, ok := h.viewerID(c)
	if !ok {
		return nil, false
	}
	records, err := h.foods.Snapshot(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return records, true
}

// readUpload reads the multipart "file" field
func readUpload(c *gin.Context) (string, []byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, domain.Validationf("upload exceeds the %d MiB limit", tooLarge.Limit>>20)
		}
		return "", nil, domain.Validationf("multipart field \"file\" is required")
	}
	content, err := readFileHeader(header)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, content, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// respondError maps domain errors onto HTTP statuses with a {"error": message} body
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrExecutorClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
