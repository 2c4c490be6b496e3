package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/receptek/backend/internal/auth"
	"github.com/receptek/backend/internal/models"
	"github.com/receptek/backend/internal/store"
)

var (
	// ErrUserExists is returned when registering an already-taken email.
	ErrUserExists = errors.New("user already exists")

	// ErrNoSuchUser is the login failure for an unknown email.
	ErrNoSuchUser = errors.New("user does not exist")

	// ErrInvalidPassword is the login failure for a wrong password.
	ErrInvalidPassword = errors.New("invalid password")
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error)
	UpdateByEmail(ctx context.Context, email string, fields bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Service owns user registration, login and account management.
type Service struct {
	users     UserStore
	jwtSecret string
}

func NewService(users UserStore, jwtSecret string) *Service {
	return &Service{users: users, jwtSecret: jwtSecret}
}

// Register creates an account. The email is lowercased before storage, the
// password is bcrypt-hashed and a 24-hour session token is persisted on the
// record. The unique email index backs up the existence check, so a
// concurrent duplicate registration still ends in ErrUserExists.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:             primitive.NewObjectID(),
		Username:       req.Username,
		Email:          email,
		Password:       string(hashed),
		Role:           "user",
		CreatedRecipes: []string{},
	}

	token, err := auth.GenerateToken(u.ID.Hex(), s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	u.Token = token

	created, err := s.users.Insert(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrUserExists
	}
	return created, err
}

// Login verifies credentials and persists a fresh session token. A failed
// login never touches the stored record.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSuchUser
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	token, err := auth.GenerateToken(u.ID.Hex(), s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return s.users.SetToken(ctx, u.ID, token)
}

// Update re-issues a token for the caller and updates the record matched by
// the request email. A missing record yields a nil user with no error, which
// the transport reports as a plain success.
func (s *Service) Update(ctx context.Context, callerID string, req models.UpdateUserRequest) (*models.User, error) {
	token, err := auth.GenerateToken(callerID, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	fields := bson.M{
		"username": req.Username,
		"email":    strings.ToLower(req.Email),
		"role":     req.Role,
		"token":    token,
	}
	return s.users.UpdateByEmail(ctx, req.Email, fields)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, oid)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, oid)
}

func (s *Service) ListAll(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
