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

const categoriesCollection = "categories"

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category models.Category) (models.Category, error)
	GetCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	GetCategories(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	// Descendants returns every category below id, at any depth.
	Descendants(ctx context.Context, id primitive.ObjectID) ([]models.Category, error)
	DeleteCategories(ctx context.Context, ids []primitive.ObjectID) error
}

type MongoCategoryRepository struct {
	DB *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db}
}

func (r *MongoCategoryRepository) CreateCategory(ctx context.Context, category models.Category) (models.Category, error) {
	collection := r.DB.Collection(categoriesCollection)

	// slugs are unique among siblings
	var existing models.Category
	if err := collection.FindOne(ctx, bson.M{"slug": category.Slug, "parentId": category.ParentID}).Decode(&existing); err == nil {
		return models.Category{}, ErrDuplicate
	}

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = time.Now()
	if _, err := collection.InsertOne(ctx, category); err != nil {
		return models.Category{}, translate(err)
	}
	return category, nil
}

func (r *MongoCategoryRepository) GetCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	var category models.Category
	err := r.DB.Collection(categoriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	return category, translate(err)
}

func (r *MongoCategoryRepository) GetCategories(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoCategoryRepository) Descendants(ctx context.Context, id primitive.ObjectID) ([]models.Category, error) {
	return r.find(ctx, bson.M{"ancestors": id})
}

func (r *MongoCategoryRepository) DeleteCategories(ctx context.Context, ids []primitive.ObjectID) error {
	_, err := r.DB.Collection(categoriesCollection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *MongoCategoryRepository) find(ctx context.Context, filter bson.M) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.M{"fullPath": 1})
	cursor, err := r.DB.Collection(categoriesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
