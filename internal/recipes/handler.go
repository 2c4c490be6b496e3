package recipes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/receptek/backend/internal/models"
	"github.com/receptek/backend/internal/store"
)

// maxImageMemory bounds how much of a multipart upload is kept in memory.
const maxImageMemory = 32 << 20

var validate = validator.New()

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Handler holds recipe HTTP handlers.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respondError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeMessage(w, http.StatusNotFound, "Not valid id: "+id)
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found recipe with id: "+id)
	default:
		logrus.WithError(err).Error("recipe request failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// Create handles POST /api/recipes/create. The body is either JSON or a
// multipart form carrying an optional recipeImage file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRecipeRequest
	var image *ImageUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageMemory); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		req = models.CreateRecipeRequest{
			Name:          r.FormValue("name"),
			Description:   r.FormValue("description"),
			Steps:         formList(r, "steps"),
			Ingredients:   formList(r, "ingredients"),
			CreatedUserID: r.FormValue("createdUserId"),
			CategoryIDs:   formList(r, "categoryIds"),
		}
		var err error
		if image, err = formImage(r); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid recipe image")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}

	recipe, err := h.service.Create(r.Context(), req, image)
	if err != nil {
		h.respondError(w, err, strings.Join(req.CategoryIDs, ","))
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// List handles GET /api/recipes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.ListAll(r.Context())
	if err != nil {
		h.respondError(w, err, "")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Get handles GET /api/recipes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipe, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Search handles GET /api/recipes/search/{name}.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	recipes, err := h.service.SearchByName(r.Context(), name)
	if err != nil {
		h.respondError(w, err, name)
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// ByCategory handles GET /api/recipes/category/{categoryId}.
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	recipes, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		h.respondError(w, err, categoryID)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Update handles PUT /api/recipes/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateRecipeRequest
	var image *ImageUpload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageMemory); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		req = models.UpdateRecipeRequest{
			Name:        formString(r, "name"),
			Description: formString(r, "description"),
			Steps:       formList(r, "steps"),
			Ingredients: formList(r, "ingredients"),
			CategoryIDs: formList(r, "categoryIds"),
			IsEnable:    formBool(r, "isEnable"),
		}
		var err error
		if image, err = formImage(r); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid recipe image")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipe, err := h.service.Update(r.Context(), id, req, image)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Delete handles DELETE /api/recipes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like handles PUT /api/recipes/{id}/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipe, err := h.service.IncrementLike(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Save handles PUT /api/recipes/{id}/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	recipe, err := h.service.IncrementSave(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Enable handles PUT /api/recipes/{id}/enable.
func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// Disable handles PUT /api/recipes/{id}/disable.
func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *Handler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id := chi.URLParam(r, "id")
	recipe, err := h.service.SetEnabled(r.Context(), id, enabled)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// SetCategories handles PUT /api/recipes/{id}/categories.
func (h *Handler) SetCategories(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SetCategoriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "categoryIds is required")
		return
	}

	recipe, err := h.service.SetCategories(r.Context(), id, req.CategoryIDs)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// AddComment handles POST /api/recipes/{id}/comment.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "text and userId are required")
		return
	}

	recipe, err := h.service.AddComment(r.Context(), id, req.Text, req.UserID)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// RemoveComment handles DELETE /api/recipes/{id}/comment/{commentId}.
func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")

	recipe, err := h.service.RemoveComment(r.Context(), id, commentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCommentNotFound):
			writeMessage(w, http.StatusNotFound, "Not found comment with id: "+commentID)
		case errors.Is(err, store.ErrInvalidID) && isValidID(id):
			// recipe id parsed, so the comment id is the malformed one
			writeMessage(w, http.StatusNotFound, "Not valid comment id: "+commentID)
		default:
			h.respondError(w, err, id)
		}
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Image handles GET /images/recipes/{filename}, streaming the stored bytes.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	data, contentType, err := h.service.Image(r.Context(), filename)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found image: "+filename)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func isValidID(id string) bool {
	_, err := store.ParseID(id)
	return err == nil
}

// formString reads an optional form field; nil means the client omitted it.
func formString(r *http.Request, key string) *string {
	if values, ok := r.Form[key]; ok && len(values) > 0 {
		return &values[0]
	}
	return nil
}

func formBool(r *http.Request, key string) *bool {
	s := formString(r, key)
	if s == nil {
		return nil
	}
	b := *s == "true"
	return &b
}

// formList reads a list-valued form field. Clients send either repeated
// fields or a single JSON-encoded array.
func formList(r *http.Request, key string) []string {
	values := r.Form[key]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(values[0]), &out); err == nil {
			return out
		}
	}
	return values
}

// formImage reads the optional recipeImage multipart file.
func formImage(r *http.Request) (*ImageUpload, error) {
	file, header, err := r.FormFile("recipeImage")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{
		Filename:    header.Filename,
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
