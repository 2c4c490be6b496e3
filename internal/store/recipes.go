package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/receptek/backend/internal/models"
)

// RecipeStore handles recipe document CRUD in MongoDB. All methods take
// already-parsed ObjectIDs; identifier validation happens in the service
// layer so malformed ids never reach the database.
type RecipeStore struct {
	col *mongo.Collection
}

func NewRecipeStore(db *mongo.Database) *RecipeStore {
	return &RecipeStore{col: db.Collection("recipes")}
}

func (s *RecipeStore) Insert(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("recipe insert: %w", err)
	}
	r.ID = res.InsertedID.(primitive.ObjectID)
	return r, nil
}

func (s *RecipeStore) List(ctx context.Context) ([]models.Recipe, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recipes []models.Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *RecipeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// SearchByName matches the name field with a case-insensitive substring.
func (s *RecipeStore) SearchByName(ctx context.Context, name string) ([]models.Recipe, error) {
	filter := bson.M{"name": bson.M{"$regex": name, "$options": "i"}}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recipes []models.Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *RecipeStore) ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Recipe, error) {
	cur, err := s.col.Find(ctx, bson.M{"category_ids": categoryID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var recipes []models.Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Update merges the given fields into the document and returns the result.
func (s *RecipeStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Recipe, error) {
	fields["updated_at"] = time.Now()
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": fields})
}

func (s *RecipeStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res := s.col.FindOneAndDelete(ctx, bson.M{"_id": id})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// IncrementField bumps a counter field by one. The $inc is atomic, so
// concurrent increments on the same recipe are never lost.
func (s *RecipeStore) IncrementField(ctx context.Context, id primitive.ObjectID, field string) (*models.Recipe, error) {
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *RecipeStore) SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) (*models.Recipe, error) {
	update := bson.M{"$set": bson.M{"is_enable": enabled, "updated_at": time.Now()}}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *RecipeStore) SetCategories(ctx context.Context, id primitive.ObjectID, categoryIDs []primitive.ObjectID) (*models.Recipe, error) {
	update := bson.M{"$set": bson.M{"category_ids": categoryIDs, "updated_at": time.Now()}}
	return s.findOneAndUpdate(ctx, id, update)
}

// PushComment appends a comment with an atomic $push, avoiding a
// read-modify-write of the whole document.
func (s *RecipeStore) PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Recipe, error) {
	update := bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return s.findOneAndUpdate(ctx, id, update)
}

// Replace writes the whole document back. Comment removal goes through here
// as a read-modify-write; concurrent comment mutations on the same recipe
// can lose updates. TODO: switch removal to a $pull once the clients stop
// depending on the replaced-document response.
func (s *RecipeStore) Replace(ctx context.Context, id primitive.ObjectID, r *models.Recipe) (*models.Recipe, error) {
	r.UpdatedAt = time.Now()
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var updated models.Recipe
	err := s.col.FindOneAndReplace(ctx, bson.M{"_id": id}, r, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *RecipeStore) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Recipe, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Recipe
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
