package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ThumbnailSizes are the square renditions generated for product images.
var ThumbnailSizes = []int{60, 120, 255, 540}

type UploadedImage struct {
	PublicID string
	URL      string
}

// ImageUploader stores an image and returns where it can be fetched from.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, name string) (UploadedImage, error)
	Thumbnails(ctx context.Context, publicID string) (map[string]string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

// Upload streams file to Cloudinary and asks for every thumbnail rendition eagerly.
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, name string) (UploadedImage, error) {
	uniqueFilename := true
	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       name,
		Folder:         u.folder,
		UniqueFilename: &uniqueFilename,
		Eager:          eagerTransformations(),
	})
	if err != nil {
		return UploadedImage{}, err
	}
	if result.Error.Message != "" {
		return UploadedImage{}, fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return UploadedImage{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

// Thumbnails regenerates the renditions of an already stored image.
func (u *CloudinaryUploader) Thumbnails(ctx context.Context, publicID string) (map[string]string, error) {
	result, err := u.cld.Upload.Explicit(ctx, uploader.ExplicitParams{
		PublicID: publicID,
		Eager:    eagerTransformations(),
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return ThumbnailURLs(result.SecureURL), nil
}

func eagerTransformations() string {
	parts := make([]string, 0, len(ThumbnailSizes))
	for _, size := range ThumbnailSizes {
		parts = append(parts, transformation(size))
	}
	return strings.Join(parts, "|")
}

func transformation(size int) string {
	return fmt.Sprintf("c_fill,g_auto,h_%d,w_%d", size, size)
}

// ThumbnailURL derives the delivery URL of a square rendition from the
// original secure URL. URLs not served by Cloudinary are returned unchanged.
func ThumbnailURL(secureURL string, size int) string {
	const marker = "/upload/"
	i := strings.Index(secureURL, marker)
	if i < 0 {
		return secureURL
	}
	cut := i + len(marker)
	return secureURL[:cut] + transformation(size) + "/" + secureURL[cut:]
}

// ThumbnailURLs maps "<size>x<size>" to the rendition URL for every thumbnail size.
func ThumbnailURLs(secureURL string) map[string]string {
	urls := make(map[string]string, len(ThumbnailSizes))
	for _, size := range ThumbnailSizes {
		urls[fmt.Sprintf("%dx%d", size, size)] = ThumbnailURL(secureURL, size)
	}
	return urls
}
