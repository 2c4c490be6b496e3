package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in the users collection.
type User struct {
	ID             primitive.ObjectID `json:"_id"             bson:"_id,omitempty"`
	Email          string             `json:"email"           bson:"email"`
	Password       string             `json:"-"               bson:"password"` // never serialize
	Username       string             `json:"username"        bson:"username"`
	Role           string             `json:"role"            bson:"role"`
	CreatedRecipes []string           `json:"createdRecipes"  bson:"created_recipes"`
	Token          string             `json:"token"           bson:"token"`
	CreatedAt      time.Time          `json:"createdAt"       bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt"       bson:"updated_at"`
}

// RegisterRequest is the body for POST /api/users/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is the body for PUT /api/users/update. The email field
// selects the record to update; the caller's identity comes from the bearer
// token, not the body.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Role     string `json:"role"`
}
