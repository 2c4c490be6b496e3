package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a label document in the categories collection.
type Category struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id,omitempty"`
	Name      string             `json:"name"      bson:"name"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CreateCategoryRequest is the body for POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}
