package handlers

import (
	"context"
	"net/http"

	"github.com/developia-II/storefront-backend/internal/services/thumbnail"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/gin-gonic/gin"
)

const MaxUploadSize = 10 << 20 // 10MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type UploadHandler struct {
	Thumbnails *thumbnail.Service
}

func NewUploadHandler(thumbnails *thumbnail.Service) *UploadHandler {
	return &UploadHandler{Thumbnails: thumbnails}
}

func (h *UploadHandler) available(c *gin.Context) bool {
	if h.Thumbnails == nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Image storage is not configured"))
		return false
	}
	return true
}

// UploadProductImage handles POST /products/:id/images. The file's first 512
// bytes must sniff as one of the allowed image types.
func (h *UploadHandler) UploadProductImage(c *gin.Context) {
	if !h.available(c) {
		return
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large (Max 10MB)"))
		return
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file"))
		return
	}

	contentType := http.DetectContentType(buffer[:n])
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Unsupported file type. Please upload JPG, PNG, WEBP, or GIF"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	image, err := h.Thumbnails.UploadProductImage(ctx, productID, file, c.PostForm("alt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"image": image,
		"type":  contentType,
	}))
}

// CreateProductThumbnails regenerates the renditions of a stored image.
func (h *UploadHandler) CreateProductThumbnails(c *gin.Context) {
	if !h.available(c) {
		return
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "imageId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*requestTimeout)
	defer cancel()

	thumbnails, err := h.Thumbnails.CreateProductThumbnails(ctx, productID, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("thumbnails created successfully", gin.H{"thumbnails": thumbnails}))
}
