package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastylog/backend/internal/domain"
	"github.com/tastylog/backend/internal/usecase"
)

type updateNameRequest struct {
	Name string `json:"name"`
}

// Register creates an account, its profile and, when possible, a session
func (h *Handler) Register(c *gin.Context) {
	var creds usecase.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	registration, err := h.auth.Register(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registration)
}

// Login opens a session; the returned secret goes into the Authorization header
func (h *Handler) Login(c *gin.Context) {
	var creds usecase.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Logout ends the session named by ?id=, or the caller's own
func (h *Handler) Logout(c *gin.Context) {
	if domain.SessionFromContext(c.Request.Context()) == "" {
		respondError(c, domain.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), c.Query("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile returns the caller's profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateName changes the caller's display name
func (h *Handler) UpdateName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	profile, err := h.auth.UpdateName(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar replaces the caller's avatar with the multipart "file" image
func (h *Handler) UploadAvatar(c *gin.Context) {
	name, content, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.media.UploadAvatar(c.Request.Context(), name, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadImage stores a food photo and returns its preview URL
func (h *Handler) UploadImage(c *gin.Context) {
	if _, ok := h.ownerID(c); !ok {
		return
	}

	name, content, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := h.media.UploadImage(c.Request.Context(), name, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}
