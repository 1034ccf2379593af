package thumbnail

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/developia-II/storefront-backend/internal/adapters/repository"
	"github.com/developia-II/storefront-backend/internal/adapters/repository/memory"
	"github.com/developia-II/storefront-backend/internal/models"
	"github.com/developia-II/storefront-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUploader struct {
	uploaded  []string
	regen     []string
	failRegen bool
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, name string) (utils.UploadedImage, error) {
	body, _ := io.ReadAll(file)
	f.uploaded = append(f.uploaded, string(body))
	return utils.UploadedImage{
		PublicID: "storefront/" + name,
		URL:      "https://res.cloudinary.com/demo/image/upload/storefront/" + name + ".jpg",
	}, nil
}

func (f *fakeUploader) Thumbnails(_ context.Context, publicID string) (map[string]string, error) {
	if f.failRegen {
		return nil, errors.New("boom")
	}
	f.regen = append(f.regen, publicID)
	return map[string]string{"60x60": "https://cdn/" + publicID + "/60"}, nil
}

func TestUploadAndRegenerate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p, err := store.CreateProduct(ctx, models.Product{Name: "Mug"})
	require.NoError(t, err)

	up := &fakeUploader{}
	svc := NewService(store, up)

	image, err := svc.UploadProductImage(ctx, p.ID, strings.NewReader("jpeg-bytes"), "front")
	require.NoError(t, err)
	assert.Equal(t, []string{"jpeg-bytes"}, up.uploaded)
	assert.Len(t, image.Thumbnails, len(utils.ThumbnailSizes))
	assert.Contains(t, image.Thumbnails["540x540"], "c_fill,g_auto,h_540,w_540")

	thumbs, err := svc.CreateProductThumbnails(ctx, p.ID, image.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{image.PublicID}, up.regen)

	stored, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 1)
	assert.Equal(t, thumbs, stored.Images[0].Thumbnails)
}

func TestCreateProductThumbnailsErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p, err := store.CreateProduct(ctx, models.Product{Name: "Mug"})
	require.NoError(t, err)
	up := &fakeUploader{}
	svc := NewService(store, up)

	_, err = svc.CreateProductThumbnails(ctx, p.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	image, err := svc.UploadProductImage(ctx, p.ID, strings.NewReader("x"), "")
	require.NoError(t, err)
	up.failRegen = true
	_, err = svc.CreateProductThumbnails(ctx, p.ID, image.ID)
	assert.Error(t, err)
}
