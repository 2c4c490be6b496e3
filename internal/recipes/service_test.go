package recipes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/receptek/backend/internal/models"
	"github.com/receptek/backend/internal/store"
)

// fakeRecipeStore is an in-memory RecipeStore. Mutations hold the mutex for
// the whole operation, mirroring Mongo's single-document atomicity.
type fakeRecipeStore struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*models.Recipe
	calls int
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{docs: map[primitive.ObjectID]*models.Recipe{}}
}

func (f *fakeRecipeStore) touch() {
	f.calls++
}

func (f *fakeRecipeStore) clone(r *models.Recipe) *models.Recipe {
	cp := *r
	cp.Steps = append([]string{}, r.Steps...)
	cp.Ingredients = append([]string{}, r.Ingredients...)
	cp.Comments = append([]models.Comment{}, r.Comments...)
	cp.CategoryIDs = append([]primitive.ObjectID{}, r.CategoryIDs...)
	return &cp
}

func (f *fakeRecipeStore) Insert(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r.ID = primitive.NewObjectID()
	f.docs[r.ID] = f.clone(r)
	return f.clone(r), nil
}

func (f *fakeRecipeStore) List(ctx context.Context) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	var out []models.Recipe
	for _, r := range f.docs {
		out = append(out, *f.clone(r))
	}
	return out, nil
}

func (f *fakeRecipeStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.clone(r), nil
}

func (f *fakeRecipeStore) SearchByName(ctx context.Context, name string) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	needle := strings.ToLower(name)
	var out []models.Recipe
	for _, r := range f.docs {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, *f.clone(r))
		}
	}
	return out, nil
}

func (f *fakeRecipeStore) ListByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	var out []models.Recipe
	for _, r := range f.docs {
		for _, cid := range r.CategoryIDs {
			if cid == categoryID {
				out = append(out, *f.clone(r))
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecipeStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if v, ok := fields["name"].(string); ok {
		r.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		r.Description = v
	}
	if v, ok := fields["steps"].([]string); ok {
		r.Steps = v
	}
	if v, ok := fields["ingredients"].([]string); ok {
		r.Ingredients = v
	}
	if v, ok := fields["category_ids"].([]primitive.ObjectID); ok {
		r.CategoryIDs = v
	}
	if v, ok := fields["is_enable"].(bool); ok {
		r.IsEnable = v
	}
	if v, ok := fields["image_url"].(string); ok {
		r.ImageURL = v
	}
	return f.clone(r), nil
}

func (f *fakeRecipeStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	if _, ok := f.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeRecipeStore) IncrementField(ctx context.Context, id primitive.ObjectID, field string) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	switch field {
	case "like":
		r.Like++
	case "save":
		r.Save++
	}
	return f.clone(r), nil
}

func (f *fakeRecipeStore) SetEnabled(ctx context.Context, id primitive.ObjectID, enabled bool) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.IsEnable = enabled
	return f.clone(r), nil
}

func (f *fakeRecipeStore) SetCategories(ctx context.Context, id primitive.ObjectID, categoryIDs []primitive.ObjectID) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.CategoryIDs = categoryIDs
	return f.clone(r), nil
}

func (f *fakeRecipeStore) PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	r, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r.Comments = append(r.Comments, c)
	return f.clone(r), nil
}

func (f *fakeRecipeStore) Replace(ctx context.Context, id primitive.ObjectID, r *models.Recipe) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touch()
	if _, ok := f.docs[id]; !ok {
		return nil, store.ErrNotFound
	}
	f.docs[id] = f.clone(r)
	return f.clone(r), nil
}

type fakeImageStore struct {
	uploads int
	removed []string
}

func (f *fakeImageStore) Upload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	f.uploads++
	return "stored_" + filename, nil
}

func (f *fakeImageStore) Download(ctx context.Context, key string) ([]byte, string, error) {
	return []byte("img"), "image/jpeg", nil
}

func (f *fakeImageStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func newTestService() (*Service, *fakeRecipeStore, *fakeImageStore) {
	recipes := newFakeRecipeStore()
	images := &fakeImageStore{}
	return NewService(recipes, images), recipes, images
}

func seedRecipe(t *testing.T, svc *Service, name string) *models.Recipe {
	t.Helper()
	r, err := svc.Create(context.Background(), models.CreateRecipeRequest{
		Name:        name,
		Steps:       []string{"boil", "blend"},
		Ingredients: []string{"water", "salt"},
	}, nil)
	require.NoError(t, err)
	return r
}

func TestCreate_Defaults(t *testing.T) {
	svc, _, images := newTestService()

	r, err := svc.Create(context.Background(), models.CreateRecipeRequest{
		Name:        "Soup",
		Steps:       []string{"boil", "blend"},
		Ingredients: []string{"water", "salt"},
	}, nil)
	require.NoError(t, err)

	assert.False(t, r.ID.IsZero())
	assert.Equal(t, 0, r.Like)
	assert.Equal(t, 0, r.Save)
	assert.False(t, r.IsEnable)
	assert.Empty(t, r.Comments)
	assert.Empty(t, r.ImageURL)
	assert.Equal(t, 0, images.uploads)
}

func TestCreate_WithImage(t *testing.T) {
	svc, _, images := newTestService()

	r, err := svc.Create(context.Background(), models.CreateRecipeRequest{Name: "Stew"}, &ImageUpload{
		Filename:    "stew.jpg",
		Data:        []byte{0xff, 0xd8},
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "stored_stew.jpg", r.ImageURL)
	assert.Equal(t, 1, images.uploads)
}

func TestGetByID_InvalidID_SkipsStore(t *testing.T) {
	svc, recipes, _ := newTestService()

	_, err := svc.GetByID(context.Background(), "nonsense")
	assert.ErrorIs(t, err, store.ErrInvalidID)
	assert.Equal(t, 0, recipes.calls, "store must not be contacted for a malformed id")
}

func TestByIDOps_InvalidID(t *testing.T) {
	svc, recipes, _ := newTestService()
	ctx := context.Background()

	ops := map[string]func() error{
		"get":     func() error { _, err := svc.GetByID(ctx, "x"); return err },
		"delete":  func() error { return svc.Delete(ctx, "x") },
		"like":    func() error { _, err := svc.IncrementLike(ctx, "x"); return err },
		"save":    func() error { _, err := svc.IncrementSave(ctx, "x"); return err },
		"enable":  func() error { _, err := svc.SetEnabled(ctx, "x", true); return err },
		"comment": func() error { _, err := svc.AddComment(ctx, "x", "hi", "u"); return err },
		"bycat":   func() error { _, err := svc.ListByCategory(ctx, "x"); return err },
	}
	for name, op := range ops {
		assert.ErrorIs(t, op(), store.ErrInvalidID, name)
	}
	assert.Equal(t, 0, recipes.calls)
}

func TestGetByID_Absent(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetByID(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIncrement_Concurrent(t *testing.T) {
	svc, recipes, _ := newTestService()
	r := seedRecipe(t, svc, "Goulash")

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.IncrementLike(context.Background(), r.ID.Hex())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, ok := recipes.docs[r.ID]
	require.True(t, ok)
	assert.Equal(t, n, got.Like)
	assert.Equal(t, 0, got.Save)
}

func TestSetEnabled(t *testing.T) {
	svc, _, _ := newTestService()
	r := seedRecipe(t, svc, "Paprikash")

	updated, err := svc.SetEnabled(context.Background(), r.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, updated.IsEnable)

	updated, err = svc.SetEnabled(context.Background(), r.ID.Hex(), false)
	require.NoError(t, err)
	assert.False(t, updated.IsEnable)
}

func TestSetCategories_ReplacesSet(t *testing.T) {
	svc, _, _ := newTestService()
	r := seedRecipe(t, svc, "Lecso")

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	updated, err := svc.SetCategories(context.Background(), r.ID.Hex(), []string{first.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{first}, updated.CategoryIDs)

	updated, err = svc.SetCategories(context.Background(), r.ID.Hex(), []string{second.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{second}, updated.CategoryIDs)
}

func TestListByCategory_EmptyIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListByCategory(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddRemoveComment_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	r := seedRecipe(t, svc, "Soup")
	ctx := context.Background()

	withFirst, err := svc.AddComment(ctx, r.ID.Hex(), "first", "u1")
	require.NoError(t, err)
	require.Len(t, withFirst.Comments, 1)

	withSecond, err := svc.AddComment(ctx, r.ID.Hex(), "second", "u2")
	require.NoError(t, err)
	require.Len(t, withSecond.Comments, 2)
	assert.NotEqual(t, withSecond.Comments[0].ID, withSecond.Comments[1].ID)
	assert.False(t, withSecond.Comments[1].CreateDate.IsZero())

	after, err := svc.RemoveComment(ctx, r.ID.Hex(), withSecond.Comments[1].ID.Hex())
	require.NoError(t, err)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, withFirst.Comments[0].ID, after.Comments[0].ID)
	assert.Equal(t, "first", after.Comments[0].Text)
}

func TestRemoveComment_UnknownComment(t *testing.T) {
	svc, recipes, _ := newTestService()
	r := seedRecipe(t, svc, "Soup")
	ctx := context.Background()

	withComment, err := svc.AddComment(ctx, r.ID.Hex(), "keep me", "u1")
	require.NoError(t, err)

	_, err = svc.RemoveComment(ctx, r.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrCommentNotFound)

	stored := recipes.docs[r.ID]
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, withComment.Comments[0].ID, stored.Comments[0].ID)
}

func strp(s string) *string { return &s }

func boolp(b bool) *bool { return &b }

func TestUpdate_PartialRetainsOmittedFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, models.CreateRecipeRequest{
		Name:        "Soup",
		Description: "hearty",
		Steps:       []string{"boil", "blend"},
		Ingredients: []string{"water", "salt"},
	}, nil)
	require.NoError(t, err)
	_, err = svc.SetEnabled(ctx, r.ID.Hex(), true)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, r.ID.Hex(), models.UpdateRecipeRequest{Name: strp("Stew")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Stew", updated.Name)
	assert.Equal(t, "hearty", updated.Description)
	assert.Equal(t, []string{"boil", "blend"}, updated.Steps)
	assert.Equal(t, []string{"water", "salt"}, updated.Ingredients)
	assert.True(t, updated.IsEnable, "omitted isEnable must not reset the flag")
}

func TestUpdate_ProvidedFieldsOverwrite(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	r := seedRecipe(t, svc, "Soup")

	updated, err := svc.Update(ctx, r.ID.Hex(), models.UpdateRecipeRequest{
		Description: strp(""),
		Steps:       []string{},
		IsEnable:    boolp(true),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Soup", updated.Name)
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.Steps)
	assert.True(t, updated.IsEnable)
}

func TestUpdate_KeepsImageWithoutUpload(t *testing.T) {
	svc, _, images := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, models.CreateRecipeRequest{Name: "Cake"}, &ImageUpload{
		Filename: "cake.jpg",
		Data:     []byte{1},
	})
	require.NoError(t, err)
	require.Equal(t, "stored_cake.jpg", r.ImageURL)

	updated, err := svc.Update(ctx, r.ID.Hex(), models.UpdateRecipeRequest{Name: strp("Cheesecake")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cheesecake", updated.Name)
	assert.Equal(t, "stored_cake.jpg", updated.ImageURL)
	assert.Empty(t, images.removed)
}

func TestUpdate_ReplacesImageWithUpload(t *testing.T) {
	svc, _, images := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, models.CreateRecipeRequest{Name: "Cake"}, &ImageUpload{Filename: "old.jpg"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, r.ID.Hex(), models.UpdateRecipeRequest{}, &ImageUpload{Filename: "new.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "stored_new.jpg", updated.ImageURL)
	assert.Equal(t, []string{"stored_old.jpg"}, images.removed, "the replaced image is cleaned up")
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService()
	r := seedRecipe(t, svc, "Soup")
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, r.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, r.ID.Hex()), store.ErrNotFound)
}

func TestDelete_RemovesStoredImage(t *testing.T) {
	svc, _, images := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, models.CreateRecipeRequest{Name: "Cake"}, &ImageUpload{Filename: "cake.jpg"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, r.ID.Hex()))
	assert.Equal(t, []string{"stored_cake.jpg"}, images.removed)
}

func TestSearchByName_CaseInsensitiveSubstring(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	seedRecipe(t, svc, "Goulash Soup")
	seedRecipe(t, svc, "Fisherman's SOUP")
	seedRecipe(t, svc, "Cake")

	got, err := svc.SearchByName(ctx, "soup")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchByName(ctx, "SoUp")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchByName(ctx, "paprika")
	require.NoError(t, err)
	assert.Empty(t, got, "no match is an empty result, not an error")
}

func TestListByCategory_Matches(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	cat := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, models.CreateRecipeRequest{
			Name:        fmt.Sprintf("recipe-%d", i),
			CategoryIDs: []string{cat.Hex()},
		}, nil)
		require.NoError(t, err)
	}
	seedRecipe(t, svc, "uncategorized")

	got, err := svc.ListByCategory(ctx, cat.Hex())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
