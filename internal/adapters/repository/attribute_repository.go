package repository

import (
	"context"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	attributesCollection   = "attributes"
	productTypesCollection = "productTypes"
)

type AttributeRepository interface {
	CreateAttribute(ctx context.Context, attr models.Attribute) (models.Attribute, error)
	GetAttributes(ctx context.Context, ids []primitive.ObjectID) ([]models.Attribute, error)
	ListAttributes(ctx context.Context) ([]models.Attribute, error)
	CreateProductType(ctx context.Context, pt models.ProductType) (models.ProductType, error)
	GetProductType(ctx context.Context, id primitive.ObjectID) (models.ProductType, error)
}

type MongoAttributeRepository struct {
	DB *mongo.Database
}

func NewAttributeRepository(db *mongo.Database) AttributeRepository {
	return &MongoAttributeRepository{DB: db}
}

func (r *MongoAttributeRepository) CreateAttribute(ctx context.Context, attr models.Attribute) (models.Attribute, error) {
	attr.ID = primitive.NewObjectID()
	for i := range attr.Values {
		if attr.Values[i].ID.IsZero() {
			attr.Values[i].ID = primitive.NewObjectID()
		}
	}
	if _, err := r.DB.Collection(attributesCollection).InsertOne(ctx, attr); err != nil {
		return models.Attribute{}, translate(err)
	}
	return attr, nil
}

func (r *MongoAttributeRepository) GetAttributes(ctx context.Context, ids []primitive.ObjectID) ([]models.Attribute, error) {
	if len(ids) == 0 {
		return []models.Attribute{}, nil
	}
	return r.findAttributes(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoAttributeRepository) ListAttributes(ctx context.Context) ([]models.Attribute, error) {
	return r.findAttributes(ctx, bson.M{})
}

func (r *MongoAttributeRepository) findAttributes(ctx context.Context, filter bson.M) ([]models.Attribute, error) {
	cursor, err := r.DB.Collection(attributesCollection).Find(ctx, filter, options.Find().SetSort(bson.M{"slug": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attrs := []models.Attribute{}
	if err := cursor.All(ctx, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (r *MongoAttributeRepository) CreateProductType(ctx context.Context, pt models.ProductType) (models.ProductType, error) {
	pt.ID = primitive.NewObjectID()
	if _, err := r.DB.Collection(productTypesCollection).InsertOne(ctx, pt); err != nil {
		return models.ProductType{}, translate(err)
	}
	return pt, nil
}

func (r *MongoAttributeRepository) GetProductType(ctx context.Context, id primitive.ObjectID) (models.ProductType, error) {
	var pt models.ProductType
	err := r.DB.Collection(productTypesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&pt)
	return pt, translate(err)
}
