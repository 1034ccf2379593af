package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	IsStaff      bool               `json:"isStaff" bson:"isStaff"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

func (u User) Role() string {
	if u.IsStaff {
		return RoleStaff
	}
	return RoleCustomer
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
