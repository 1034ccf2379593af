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

const collectionsCollection = "collections"

type CollectionRepository interface {
	CreateCollection(ctx context.Context, c models.Collection) (models.Collection, error)
	GetCollection(ctx context.Context, id primitive.ObjectID) (models.Collection, error)
	GetCollections(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	DeleteCollection(ctx context.Context, id primitive.ObjectID) error
}

type MongoCollectionRepository struct {
	DB *mongo.Database
}

func NewCollectionRepository(db *mongo.Database) CollectionRepository {
	return &MongoCollectionRepository{DB: db}
}

func (r *MongoCollectionRepository) CreateCollection(ctx context.Context, c models.Collection) (models.Collection, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	if c.ProductIDs == nil {
		c.ProductIDs = []primitive.ObjectID{}
	}
	if _, err := r.DB.Collection(collectionsCollection).InsertOne(ctx, c); err != nil {
		return models.Collection{}, translate(err)
	}
	return c, nil
}

func (r *MongoCollectionRepository) GetCollection(ctx context.Context, id primitive.ObjectID) (models.Collection, error) {
	var c models.Collection
	err := r.DB.Collection(collectionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, translate(err)
}

func (r *MongoCollectionRepository) GetCollections(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error) {
	if len(ids) == 0 {
		return []models.Collection{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoCollectionRepository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoCollectionRepository) DeleteCollection(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.DB.Collection(collectionsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCollectionRepository) find(ctx context.Context, filter bson.M) ([]models.Collection, error) {
	cursor, err := r.DB.Collection(collectionsCollection).Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	collections := []models.Collection{}
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}
