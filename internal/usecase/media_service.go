package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/tastylog/backend/internal/domain"
)

// MaxAvatarBytes caps avatar uploads
const MaxAvatarBytes = 5 << 20

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// MimeTypeFor guesses an upload's content type from its file extension
func MimeTypeFor(fileName string) string {
	if mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

// MediaService uploads food photos and avatars to the storage bucket
type MediaService struct {
	store    domain.RemoteStore
	auth     *AuthService
	bucketID string
	now      func() time.Time
}

// NewMediaService creates a new media service
func NewMediaService(store domain.RemoteStore, auth *AuthService, bucketID string) *MediaService {
	return &MediaService{
		store:    store,
		auth:     auth,
		bucketID: bucketID,
		now:      time.Now,
	}
}

// UploadImage stores a food photo and returns its id and preview URL
func (s *MediaService) UploadImage(ctx context.Context, fileName string, content []byte) (*domain.UploadedFile, error) {
	if len(content) == 0 {
		return nil, domain.Validationf("image is empty")
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = "food_" + s.now().Format("20060102_150405") + ".jpg"
	}
	fileName = filepath.Base(fileName)

	file, err := s.store.UploadFile(ctx, s.bucketID, fileName, MimeTypeFor(fileName), content)
	if err != nil {
		log.Printf("[Media] Upload of %q failed: %v", fileName, err)
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	log.Printf("[Media] Uploaded %q as %s", fileName, file.ID)
	return file, nil
}

// UploadAvatar stores a JPEG avatar and points the caller's profile at it
func (s *MediaService) UploadAvatar(ctx context.Context, fileName string, content []byte) (domain.UserProfile, error) {
	if len(content) == 0 {
		return domain.UserProfile{}, domain.Validationf("avatar is empty")
	}
	if len(content) > MaxAvatarBytes {
		return domain.UserProfile{}, domain.Validationf("avatar exceeds %d bytes", MaxAvatarBytes)
	}

	account, err := s.auth.CurrentAccount(ctx)
	if err != nil {
		return domain.UserProfile{}, err
	}

	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." {
		fileName = "avatar_" + account.ID
	}
	lower := strings.ToLower(fileName)
	if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") {
		fileName += ".jpg"
	}

	file, err := s.store.UploadFile(ctx, s.bucketID, fileName, "image/jpeg", content)
	if err != nil {
		log.Printf("[Media] Avatar upload failed for user %s: %v", account.ID, err)
		return domain.UserProfile{}, fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.auth.UpdateAvatar(ctx, file.PreviewURL)
}
