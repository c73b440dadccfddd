package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/ZisanUlHaque/RedHope-Server/models"
	store "github.com/ZisanUlHaque/RedHope-Server/store"
)

type UserService struct {
	store UserStore
	now   func() time.Time
}

func NewUserService(s UserStore) *UserService {
	return &UserService{store: s, now: time.Now}
}

// Register creates a donor account for u.Email. When the email is already
// registered the stored user is returned and created is false.
func (s *UserService) Register(ctx context.Context, u *models.User) (user *models.User, created bool, err error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return nil, false, errorf(ErrValidation, "email is required")
	}

	existing, err := s.store.FindByEmail(ctx, u.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, wrap(ErrStore, "look up user", err)
	}

	u.ID = primitive.NilObjectID
	u.Role = models.RoleDonor
	u.Status = models.UserActive
	u.CreatedAt = s.now().UTC()

	if _, err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			existing, ferr := s.store.FindByEmail(ctx, u.Email)
			if ferr != nil {
				return nil, false, wrap(ErrStore, "reload user", ferr)
			}
			return existing, false, nil
		}
		return nil, false, wrap(ErrStore, "insert user", err)
	}

	slog.Info("user registered", "email", u.Email)
	return u, true, nil
}

func (s *UserService) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	users, err := s.store.Find(ctx, f)
	if err != nil {
		return nil, wrap(ErrStore, "list users", err)
	}
	return users, nil
}

func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errorf(ErrNotFound, "user %s", email)
	}
	if err != nil {
		return nil, wrap(ErrStore, "get user", err)
	}
	return u, nil
}

// UpdateProfile applies the self-service fields of patch.
func (s *UserService) UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) (models.UpdateResult, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return models.UpdateResult{}, errorf(ErrValidation, "no fields to update")
	}

	res, err := s.store.UpdateByEmail(ctx, email, bson.M(fields))
	if err != nil {
		return models.UpdateResult{}, wrap(ErrStore, "update profile", err)
	}
	return res, nil
}

// Role returns the stored role for email, or donor when the user is unknown.
func (s *UserService) Role(ctx context.Context, email string) (models.Role, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.RoleDonor, nil
	}
	if err != nil {
		return "", wrap(ErrStore, "get user role", err)
	}
	if u.Role == "" {
		return models.RoleDonor, nil
	}
	return u.Role, nil
}

func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error) {
	if !role.Valid() {
		return models.UpdateResult{}, errorf(ErrValidation, "unknown role %q", role)
	}
	return s.setByID(ctx, id, bson.M{"role": role})
}

func (s *UserService) SetStatus(ctx context.Context, id string, status models.UserStatus) (models.UpdateResult, error) {
	if !status.Valid() {
		return models.UpdateResult{}, errorf(ErrValidation, "unknown status %q", status)
	}
	return s.setByID(ctx, id, bson.M{"status": status})
}

func (s *UserService) setByID(ctx context.Context, id string, fields bson.M) (models.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := s.store.UpdateByID(ctx, oid, fields)
	if err != nil {
		return models.UpdateResult{}, wrap(ErrStore, "update user", err)
	}
	return res, nil
}
