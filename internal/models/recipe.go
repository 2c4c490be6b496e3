package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in a recipe document and never stored on its own.
type Comment struct {
	ID         primitive.ObjectID `json:"_id"        bson:"_id"`
	Text       string             `json:"text"       bson:"text"`
	UserID     string             `json:"userId"     bson:"user_id"`
	CreateDate time.Time          `json:"createDate" bson:"create_date"`
}

// Recipe is a document in the recipes collection.
type Recipe struct {
	ID            primitive.ObjectID   `json:"_id"           bson:"_id,omitempty"`
	Name          string               `json:"name"          bson:"name"`
	Description   string               `json:"description"   bson:"description"`
	Steps         []string             `json:"steps"         bson:"steps"`
	Ingredients   []string             `json:"ingredients"   bson:"ingredients"`
	Like          int                  `json:"like"          bson:"like"`
	Save          int                  `json:"save"          bson:"save"`
	IsEnable      bool                 `json:"isEnable"      bson:"is_enable"`
	CreatedUserID string               `json:"createdUserId" bson:"created_user_id"`
	CategoryIDs   []primitive.ObjectID `json:"categoryIds"   bson:"category_ids"`
	Comments      []Comment            `json:"comments"      bson:"comments"`
	ImageURL      string               `json:"imageUrl"      bson:"image_url"`
	CreatedAt     time.Time            `json:"createdAt"     bson:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt"     bson:"updated_at"`
}

// CreateRecipeRequest is the body for POST /api/recipes/create. The image,
// if any, arrives as a multipart file alongside these fields.
type CreateRecipeRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Steps         []string `json:"steps"`
	Ingredients   []string `json:"ingredients"`
	CreatedUserID string   `json:"createdUserId"`
	CategoryIDs   []string `json:"categoryIds"`
}

// UpdateRecipeRequest is the body for PUT /api/recipes/{id}. Every field is
// optional; nil means "leave the stored value alone", so only the keys a
// client actually sends are merged into the document.
type UpdateRecipeRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Steps       []string `json:"steps"`
	Ingredients []string `json:"ingredients"`
	CategoryIDs []string `json:"categoryIds"`
	IsEnable    *bool    `json:"isEnable"`
}

// AddCommentRequest is the body for POST /api/recipes/{id}/comment.
type AddCommentRequest struct {
	Text   string `json:"text"   validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// SetCategoriesRequest is the body for PUT /api/recipes/{id}/categories.
type SetCategoriesRequest struct {
	CategoryIDs []string `json:"categoryIds" validate:"required"`
}
