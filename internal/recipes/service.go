package recipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/receptek/backend/internal/models"
	"github.com/receptek/backend/internal/store"
)

// ErrCommentNotFound distinguishes a missing comment from a missing recipe.
var ErrCommentNotFound = errors.New("comment not found")

// RecipeStore defines the interface for recipe persistence.
type RecipeStore interface {
	Insert(ctx context.Context, r *models.Recipe) (*models.Recipe, error)
	List(ctx context.Context) ([]models.Recipe, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	SearchByName(ctx context.Context, name string) ([]models.Recipe, error)
	ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Recipe, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Recipe, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementField(ctx context.Context, id primitive.ObjectID, field string) (*models.Recipe, error)
	SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) (*models.Recipe, error)
	SetCategories(ctx context.Context, id primitive.ObjectID, categoryIDs []primitive.ObjectID) (*models.Recipe, error)
	PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Recipe, error)
	Replace(ctx context.Context, id primitive.ObjectID, r *models.Recipe) (*models.Recipe, error)
}

// ImageStore defines the interface for image storage.
type ImageStore interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// ImageUpload carries the raw bytes of an uploaded recipe image.
type ImageUpload struct {
	Filename    string
	Data        []byte
	ContentType string
}

// Service owns the recipe lifecycle.
type Service struct {
	recipes RecipeStore
	images  ImageStore
}

func NewService(recipes RecipeStore, images ImageStore) *Service {
	return &Service{recipes: recipes, images: images}
}

// Create persists a new recipe with zero counters, no comments and the
// enabled flag off. A supplied image is stored first and its key recorded.
// Author and category references are not checked for existence.
func (s *Service) Create(ctx context.Context, req models.CreateRecipeRequest, image *ImageUpload) (*models.Recipe, error) {
	categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if image != nil {
		key, err := s.images.Upload(ctx, image.Filename, image.Data, image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		imageURL = key
	}

	r := &models.Recipe{
		Name:          req.Name,
		Description:   req.Description,
		Steps:         emptyIfNil(req.Steps),
		Ingredients:   emptyIfNil(req.Ingredients),
		CreatedUserID: req.CreatedUserID,
		CategoryIDs:   categoryIDs,
		Comments:      []models.Comment{},
		IsEnable:      false,
		ImageURL:      imageURL,
	}
	return s.recipes.Insert(ctx, r)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Recipe, error) {
	return s.recipes.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.recipes.GetByID(ctx, oid)
}

func (s *Service) SearchByName(ctx context.Context, name string) ([]models.Recipe, error) {
	return s.recipes.SearchByName(ctx, name)
}

// ListByCategory returns the recipes associated with a category. An empty
// result is reported as not found, matching the behavior clients rely on.
func (s *Service) ListByCategory(ctx context.Context, categoryID string) ([]models.Recipe, error) {
	oid, err := store.ParseID(categoryID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.ListByCategory(ctx, oid)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, store.ErrNotFound
	}
	return recipes, nil
}

// Update merges only the provided fields into the recipe; omitted fields
// keep their stored values. A new image replaces the stored reference and
// the superseded object is removed best-effort.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateRecipeRequest, image *ImageUpload) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.recipes.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Steps != nil {
		fields["steps"] = req.Steps
	}
	if req.Ingredients != nil {
		fields["ingredients"] = req.Ingredients
	}
	if req.CategoryIDs != nil {
		categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		fields["category_ids"] = categoryIDs
	}
	if req.IsEnable != nil {
		fields["is_enable"] = *req.IsEnable
	}
	if image != nil {
		key, err := s.images.Upload(ctx, image.Filename, image.Data, image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		fields["image_url"] = key
		if existing.ImageURL != "" {
			s.images.Remove(ctx, existing.ImageURL)
		}
	}
	return s.recipes.Update(ctx, oid, fields)
}

// Delete removes the recipe and cleans up its stored image, if any.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	existing, err := s.recipes.GetByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, oid); err != nil {
		return err
	}
	if existing.ImageURL != "" {
		s.images.Remove(ctx, existing.ImageURL)
	}
	return nil
}

func (s *Service) IncrementLike(ctx context.Context, id string) (*models.Recipe, error) {
	return s.increment(ctx, id, "like")
}

func (s *Service) IncrementSave(ctx context.Context, id string) (*models.Recipe, error) {
	return s.increment(ctx, id, "save")
}

func (s *Service) increment(ctx context.Context, id, field string) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.recipes.IncrementField(ctx, oid, field)
}

func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.recipes.SetEnabled(ctx, oid, enabled)
}

// SetCategories replaces the recipe's category association set.
func (s *Service) SetCategories(ctx context.Context, id string, categoryIDs []string) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	cids, err := parseCategoryIDs(categoryIDs)
	if err != nil {
		return nil, err
	}
	return s.recipes.SetCategories(ctx, oid, cids)
}

// AddComment appends a comment with a server-generated id and timestamp.
func (s *Service) AddComment(ctx context.Context, id, text, userID string) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	comment := models.Comment{
		ID:         primitive.NewObjectID(),
		Text:       text,
		UserID:     userID,
		CreateDate: time.Now(),
	}
	return s.recipes.PushComment(ctx, oid, comment)
}

// RemoveComment deletes one embedded comment and writes the whole recipe
// back. Concurrent comment mutations on the same recipe can race here; the
// store's Replace method is the seam for a future atomic removal.
func (s *Service) RemoveComment(ctx context.Context, id, commentID string) (*models.Recipe, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	cid, err := store.ParseID(commentID)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipes.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range recipe.Comments {
		if c.ID == cid {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
	}

	recipe.Comments = append(recipe.Comments[:idx], recipe.Comments[idx+1:]...)
	return s.recipes.Replace(ctx, oid, recipe)
}

// Image streams a stored recipe image by object key.
func (s *Service) Image(ctx context.Context, key string) ([]byte, string, error) {
	return s.images.Download(ctx, key)
}

func parseCategoryIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := store.ParseID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
