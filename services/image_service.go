package services

import (
	"fmt"
	"mime/multipart"

	"github.com/Evian1k/VeloManage5/utils"
)

// ImageService validates and stores uploaded photos
type ImageService struct {
	store ObjectStore
}

// NewImageService creates an ImageService over the given store
func NewImageService(store ObjectStore) *ImageService {
	return &ImageService{store: store}
}

// UploadImage validates and uploads a photo, returning the storage key
func (s *ImageService) UploadImage(kind string, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key, err := s.store.UploadFile(kind, fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// ImageURL generates a URL for accessing an uploaded photo
func (s *ImageService) ImageURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.store.GetPresignedURL(key)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage removes a photo from storage
func (s *ImageService) DeleteImage(key string) error {
	if key == "" {
		return nil
	}

	if err := s.store.DeleteFile(key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
