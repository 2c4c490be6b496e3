package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/receptek/backend/internal/middleware"
	"github.com/receptek/backend/internal/models"
	"github.com/receptek/backend/internal/store"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Handler holds user HTTP handlers.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /api/users/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		logrus.WithError(err).Error("register failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoSuchUser):
			writeMessage(w, http.StatusBadRequest, "User does not exist")
		case errors.Is(err, ErrInvalidPassword):
			writeMessage(w, http.StatusBadRequest, "Invalid password")
		default:
			logrus.WithError(err).Error("login failed")
			writeMessage(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/update. The caller's identity comes from
// the bearer token; an unmatched email still answers 200 with a null body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "username and email are required")
		return
	}

	user, err := h.service.Update(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		logrus.WithError(err).Error("user update failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/delete/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListAll(r.Context())
	if err != nil {
		logrus.WithError(err).Error("user list failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeMessage(w, http.StatusNotFound, "Not valid id: "+id)
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		logrus.WithError(err).Error("user request failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
