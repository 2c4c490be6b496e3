package categories

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/receptek/backend/internal/models"
)

var validate = validator.New()

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	Insert(ctx context.Context, c *models.Category) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

// Handler holds category HTTP handlers. Categories are create/list only.
type Handler struct {
	categories CategoryStore
}

func NewHandler(categories CategoryStore) *Handler {
	return &Handler{categories: categories}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Create handles POST /api/categories. Names are not unique.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name is required"})
		return
	}

	category, err := h.categories.Insert(r.Context(), &models.Category{Name: req.Name})
	if err != nil {
		logrus.WithError(err).Error("category create failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// List handles GET /api/categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		logrus.WithError(err).Error("category list failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}
