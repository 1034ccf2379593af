package repository

import (
	"context"
	"strings"
	"time"

	"github.com/developia-II/storefront-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type MongoUserRepository struct {
	DB *mongo.Database
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{DB: db}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	user.Email = strings.ToLower(user.Email)
	if _, err := r.GetUserByEmail(ctx, user.Email); err == nil {
		return models.User{}, ErrDuplicate
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	if _, err := r.DB.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := r.DB.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, translate(err)
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.DB.Collection(usersCollection).FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	return user, translate(err)
}
