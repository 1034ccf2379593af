package repository

import (
	"context"
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pagesCollection = "pages"

type PageRepository interface {
	CreatePage(ctx context.Context, page models.Page) (models.Page, error)
	GetPage(ctx context.Context, id primitive.ObjectID) (models.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (models.Page, error)
	GetPages(ctx context.Context, ids []primitive.ObjectID) ([]models.Page, error)
	ListPages(ctx context.Context) ([]models.Page, error)
	DeletePage(ctx context.Context, id primitive.ObjectID) error
}

type MongoPageRepository struct {
	DB *mongo.Database
}

func NewPageRepository(db *mongo.Database) PageRepository {
	return &MongoPageRepository{DB: db}
}

func (r *MongoPageRepository) CreatePage(ctx context.Context, page models.Page) (models.Page, error) {
	collection := r.DB.Collection(pagesCollection)

	var existing models.Page
	if err := collection.FindOne(ctx, bson.M{"slug": page.Slug}).Decode(&existing); err == nil {
		return models.Page{}, ErrDuplicate
	}

	page.ID = primitive.NewObjectID()
	page.CreatedAt = time.Now()
	if _, err := collection.InsertOne(ctx, page); err != nil {
		return models.Page{}, translate(err)
	}
	return page, nil
}

func (r *MongoPageRepository) GetPage(ctx context.Context, id primitive.ObjectID) (models.Page, error) {
	var page models.Page
	err := r.DB.Collection(pagesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&page)
	return page, translate(err)
}

func (r *MongoPageRepository) GetPageBySlug(ctx context.Context, slug string) (models.Page, error) {
	var page models.Page
	err := r.DB.Collection(pagesCollection).FindOne(ctx, bson.M{"slug": slug}).Decode(&page)
	return page, translate(err)
}

func (r *MongoPageRepository) GetPages(ctx context.Context, ids []primitive.ObjectID) ([]models.Page, error) {
	if len(ids) == 0 {
		return []models.Page{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoPageRepository) ListPages(ctx context.Context) ([]models.Page, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoPageRepository) DeletePage(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.DB.Collection(pagesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPageRepository) find(ctx context.Context, filter bson.M) ([]models.Page, error) {
	cursor, err := r.DB.Collection(pagesCollection).Find(ctx, filter, options.Find().SetSort(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pages := []models.Page{}
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}
