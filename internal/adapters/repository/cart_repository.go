package repository

import (
	"context"
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const cartsCollection = "carts"

type CartRepository interface {
	CreateCart(ctx context.Context, cart models.Cart) (models.Cart, error)
	GetOpenCartByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	// GetOpenAnonymousCart only matches open carts that no user owns.
	GetOpenAnonymousCart(ctx context.Context, token string) (models.Cart, error)
	GetCartByPaymentIntent(ctx context.Context, intentID string) (models.Cart, error)
	SaveCart(ctx context.Context, cart models.Cart) error
	AssignUser(ctx context.Context, cartID primitive.ObjectID, user models.User) error
	// TransitionStatus moves the cart to status to only while it is in status
	// from, and reports whether it did.
	TransitionStatus(ctx context.Context, cartID primitive.ObjectID, from, to models.CartStatus) (bool, error)
	SetPaymentIntent(ctx context.Context, cartID primitive.ObjectID, intentID string) error
}

type MongoCartRepository struct {
	DB *mongo.Database
}

func NewCartRepository(db *mongo.Database) CartRepository {
	return &MongoCartRepository{DB: db}
}

func (r *MongoCartRepository) CreateCart(ctx context.Context, cart models.Cart) (models.Cart, error) {
	now := time.Now()
	cart.ID = primitive.NewObjectID()
	cart.CreatedAt = now
	cart.LastStatusChange = now
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	if _, err := r.DB.Collection(cartsCollection).InsertOne(ctx, cart); err != nil {
		return models.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *MongoCartRepository) GetOpenCartByUser(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "status": models.CartStatusOpen})
}

func (r *MongoCartRepository) GetOpenAnonymousCart(ctx context.Context, token string) (models.Cart, error) {
	return r.findOne(ctx, bson.M{"token": token, "userId": nil, "status": models.CartStatusOpen})
}

func (r *MongoCartRepository) GetCartByPaymentIntent(ctx context.Context, intentID string) (models.Cart, error) {
	return r.findOne(ctx, bson.M{"paymentIntentId": intentID})
}

func (r *MongoCartRepository) findOne(ctx context.Context, filter bson.M) (models.Cart, error) {
	var cart models.Cart
	err := r.DB.Collection(cartsCollection).FindOne(ctx, filter).Decode(&cart)
	return cart, translate(err)
}

func (r *MongoCartRepository) SaveCart(ctx context.Context, cart models.Cart) error {
	res, err := r.DB.Collection(cartsCollection).ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCartRepository) AssignUser(ctx context.Context, cartID primitive.ObjectID, user models.User) error {
	update := bson.M{"$set": bson.M{"userId": user.ID, "userEmail": user.Email}}
	return r.updateOne(ctx, cartID, update)
}

func (r *MongoCartRepository) TransitionStatus(ctx context.Context, cartID primitive.ObjectID, from, to models.CartStatus) (bool, error) {
	filter := bson.M{"_id": cartID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "lastStatusChange": time.Now()}}
	res, err := r.DB.Collection(cartsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoCartRepository) SetPaymentIntent(ctx context.Context, cartID primitive.ObjectID, intentID string) error {
	update := bson.M{"$set": bson.M{
		"paymentIntentId":  intentID,
		"status":           models.CartStatusWaitingForPayment,
		"lastStatusChange": time.Now(),
	}}
	return r.updateOne(ctx, cartID, update)
}

func (r *MongoCartRepository) updateOne(ctx context.Context, cartID primitive.ObjectID, update bson.M) error {
	res, err := r.DB.Collection(cartsCollection).UpdateOne(ctx, bson.M{"_id": cartID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

