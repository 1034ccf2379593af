// Package thumbnail stores product images and keeps their renditions current.
package thumbnail

import (
	"context"
	"fmt"
	"io"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service struct {
	products repository.ProductRepository
	uploader utils.ImageUploader
}

func NewService(products repository.ProductRepository, uploader utils.ImageUploader) *Service {
	return &Service{products: products, uploader: uploader}
}

// UploadProductImage stores file under a random name and attaches it to the
// product together with its thumbnail URLs.
func (s *Service) UploadProductImage(ctx context.Context, productID primitive.ObjectID, file io.Reader, alt string) (models.ProductImage, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return models.ProductImage{}, err
	}

	uploaded, err := s.uploader.Upload(ctx, file, uuid.New().String())
	if err != nil {
		return models.ProductImage{}, fmt.Errorf("upload image: %w", err)
	}

	image := models.ProductImage{
		ID:         primitive.NewObjectID(),
		PublicID:   uploaded.PublicID,
		URL:        uploaded.URL,
		Alt:        alt,
		SortOrder:  len(p.Images),
		Thumbnails: utils.ThumbnailURLs(uploaded.URL),
	}
	if err := s.products.AddImage(ctx, productID, image); err != nil {
		return models.ProductImage{}, err
	}
	logrus.WithFields(logrus.Fields{
		"productId": productID.Hex(),
		"publicId":  image.PublicID,
	}).Info("product image uploaded")
	return image, nil
}

// CreateProductThumbnails regenerates the renditions of a stored image and
// records their URLs on it.
func (s *Service) CreateProductThumbnails(ctx context.Context, productID, imageID primitive.ObjectID) (map[string]string, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	image, ok := p.Image(imageID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	thumbs, err := s.uploader.Thumbnails(ctx, image.PublicID)
	if err != nil {
		return nil, fmt.Errorf("create thumbnails for %s: %w", image.PublicID, err)
	}
	if err := s.products.SetImageThumbnails(ctx, productID, imageID, thumbs); err != nil {
		return nil, err
	}
	return thumbs, nil
}
