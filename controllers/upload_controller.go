package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Evian1k/VeloManage5/services"
	"github.com/Evian1k/VeloManage5/utils"
)

// allowed image categories map to S3 key prefixes
var uploadKinds = map[string]bool{
	"incidents": true,
	"vehicles":  true,
	"records":   true,
}

// UploadController handles image uploads and presigned URL generation
type UploadController struct {
	DB     *gorm.DB
	Images *services.ImageService
}

func NewUploadController(db *gorm.DB, images *services.ImageService) *UploadController {
	return &UploadController{DB: db, Images: images}
}

// UploadImage stores a multipart image under a category prefix and returns
// the object key plus a presigned URL.
func (uc *UploadController) UploadImage(c *gin.Context) {
	if _, ok := loadCurrentUser(c, uc.DB); !ok {
		return
	}

	kind := c.PostForm("kind")
	if !uploadKinds[kind] {
		respondValidationErrors(c, []string{"kind must be one of incidents, vehicles, records"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "An image file is required",
			},
		})
		return
	}

	key, err := uc.Images.UploadImage(kind, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		logrus.WithError(err).Error("failed to upload image")
		respondServerError(c, "Failed to upload image")
		return
	}

	url, err := uc.Images.ImageURL(key)
	if err != nil {
		logrus.WithError(err).Warn("failed to presign uploaded image")
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}

// GetImageURL returns a fresh presigned URL for an existing object key
func (uc *UploadController) GetImageURL(c *gin.Context) {
	if _, ok := loadCurrentUser(c, uc.DB); !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		respondValidationErrors(c, []string{"key query parameter is required"})
		return
	}

	url, err := uc.Images.ImageURL(key)
	if err != nil {
		respondServerError(c, "Failed to generate URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"key": key,
			"url": url,
		},
	})
}

// DeleteImage removes an uploaded object. Admin only.
func (uc *UploadController) DeleteImage(c *gin.Context) {
	if _, ok := requireAdmin(c, uc.DB); !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		respondValidationErrors(c, []string{"key query parameter is required"})
		return
	}

	if err := uc.Images.DeleteImage(key); err != nil {
		respondServerError(c, "Failed to delete image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message": "Image deleted successfully",
		},
	})
}
