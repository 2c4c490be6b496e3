package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/receptek/backend/internal/models"
)

// CategoryStore handles category documents. Categories only support create
// and list.
type CategoryStore struct {
	col *mongo.Collection
}

func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{col: db.Collection("categories")}
}

func (s *CategoryStore) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.CreatedAt = time.Now()
	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("category insert: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
