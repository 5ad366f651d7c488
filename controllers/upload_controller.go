package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
	"github.com/onboard-hq/onboard-server/utils"
)

func validateFile(fileHeader *multipart.FileHeader) error {
	// 10MB cap
	if fileHeader.Size > 10<<20 {
		return fmt.Errorf("file exceeds size limit")
	}

	allowedTypes := map[string]bool{
		"image/jpeg":         true,
		"image/png":          true,
		"image/gif":          true,
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	// sniff the first 512 bytes only
	buffer := make([]byte, 512)
	if _, err = file.Read(buffer); err != nil {
		return err
	}

	contentType := http.DetectContentType(buffer)
	if !allowedTypes[contentType] {
		return fmt.Errorf("unsupported file type")
	}
	return nil
}

// UploadFile stores a file in the media bucket, records a Media row
// and returns the public URL. Image/attachment questions save the
// returned URL through the normal answer pipeline afterwards.
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file received"})
		return
	}

	if err := validateFile(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	fileID := fmt.Sprintf("%d", time.Now().UnixNano())
	publicURL, err := utils.UploadToSupabase(fileHeader, fileHeader.Filename, fileID, "uploads", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	media := models.Media{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		URL:      publicURL,
	}
	if v, ok := c.Get(middleware.CtxUser); ok {
		u := v.(models.AppUser)
		media.UploadedByID = &u.ID
	}
	if err := config.DB.Create(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not record upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"media_id": media.ID,
		"url":      publicURL,
	})
}
