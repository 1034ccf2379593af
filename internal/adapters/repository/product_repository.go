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

const productsCollection = "products"

type ProductRepository interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByVariant(ctx context.Context, variantID primitive.ObjectID) (models.Product, error)
	ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error)
	CountProducts(ctx context.Context, query ProductQuery) (int64, error)
	// AdjustVariantStock shifts the variant's quantity and allocation atomically.
	// It fails with models.ErrInsufficientStock if either would go negative.
	AdjustVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, quantity, allocated int) (models.Variant, error)
	AddImage(ctx context.Context, productID primitive.ObjectID, image models.ProductImage) error
	SetImageThumbnails(ctx context.Context, productID, imageID primitive.ObjectID, thumbnails map[string]string) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	DeleteByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error)
}

type MongoProductRepository struct {
	DB *mongo.Database
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &MongoProductRepository{DB: db}
}

func (r *MongoProductRepository) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Attributes == nil {
		product.Attributes = map[string]string{}
	}
	if product.Images == nil {
		product.Images = []models.ProductImage{}
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	for i := range product.Variants {
		if product.Variants[i].ID.IsZero() {
			product.Variants[i].ID = primitive.NewObjectID()
		}
		if product.Variants[i].Attributes == nil {
			product.Variants[i].Attributes = map[string]string{}
		}
	}

	if _, err := r.DB.Collection(productsCollection).InsertOne(ctx, product); err != nil {
		return models.Product{}, translate(err)
	}
	return product, nil
}

func (r *MongoProductRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := r.DB.Collection(productsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	return product, translate(err)
}

func (r *MongoProductRepository) FindByVariant(ctx context.Context, variantID primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := r.DB.Collection(productsCollection).FindOne(ctx, bson.M{"variants.id": variantID}).Decode(&product)
	return product, translate(err)
}

func (r *MongoProductRepository) ListProducts(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	opts := options.Find().SetSort(query.Sort())
	if query.Skip > 0 {
		opts.SetSkip(query.Skip)
	}
	if query.Limit > 0 {
		opts.SetLimit(query.Limit)
	}

	cursor, err := r.DB.Collection(productsCollection).Find(ctx, query.Filter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoProductRepository) CountProducts(ctx context.Context, query ProductQuery) (int64, error) {
	return r.DB.Collection(productsCollection).CountDocuments(ctx, query.Filter())
}

func (r *MongoProductRepository) AdjustVariantStock(ctx context.Context, productID, variantID primitive.ObjectID, quantity, allocated int) (models.Variant, error) {
	collection := r.DB.Collection(productsCollection)

	// Guard against negative stock in the same statement as the update
	elem := bson.M{"id": variantID}
	if quantity < 0 {
		elem["quantity"] = bson.M{"$gte": -quantity}
	}
	if allocated < 0 {
		elem["quantityAllocated"] = bson.M{"$gte": -allocated}
	}
	filter := bson.M{"_id": productID, "variants": bson.M{"$elemMatch": elem}}
	update := bson.M{
		"$inc": bson.M{
			"variants.$.quantity":          quantity,
			"variants.$.quantityAllocated": allocated,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err == mongo.ErrNoDocuments {
		n, err := collection.CountDocuments(ctx, bson.M{"_id": productID, "variants.id": variantID})
		if err != nil {
			return models.Variant{}, err
		}
		if n == 0 {
			return models.Variant{}, ErrNotFound
		}
		return models.Variant{}, models.ErrInsufficientStock
	}
	if err != nil {
		return models.Variant{}, err
	}

	variant, ok := product.Variant(variantID)
	if !ok {
		return models.Variant{}, ErrNotFound
	}
	return variant, nil
}

func (r *MongoProductRepository) AddImage(ctx context.Context, productID primitive.ObjectID, image models.ProductImage) error {
	update := bson.M{
		"$push": bson.M{"images": image},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.DB.Collection(productsCollection).UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) SetImageThumbnails(ctx context.Context, productID, imageID primitive.ObjectID, thumbnails map[string]string) error {
	filter := bson.M{"_id": productID, "images.id": imageID}
	update := bson.M{"$set": bson.M{"images.$.thumbnails": thumbnails}}
	res, err := r.DB.Collection(productsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.DB.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) DeleteByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) (int64, error) {
	res, err := r.DB.Collection(productsCollection).DeleteMany(ctx, bson.M{"categoryId": bson.M{"$in": categoryIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
