package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/pkg/logger"
)

// UserDirectory is the user-management side of the backend
type UserDirectory interface {
	Users(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// CreateUserRequest is the add-user form
type CreateUserRequest struct {
	Name        string   `json:"name" validate:"required"`
	Username    string   `json:"username" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Password    string   `json:"password" validate:"required"`
	Permissions []string `json:"permissions"`
}

// UpdateUserRequest is the edit-user form; an empty password keeps the stored one
type UpdateUserRequest struct {
	Name        string   `json:"name" validate:"required"`
	Username    string   `json:"username" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Password    string   `json:"password"`
	Permissions []string `json:"permissions"`
}

func parsePermissions(values []string) (domain.PageSet, error) {
	set, unknown := domain.ParsePageSet(values)
	if len(unknown) > 0 {
		return 0, fmt.Errorf("%w: unknown permissions %s", ErrValidation, strings.Join(unknown, ", "))
	}
	return set, nil
}

// AdminController performs user CRUD and keeps the last-known-good list
type AdminController struct {
	directory UserDirectory

	mu    sync.RWMutex
	users []domain.User
}

// NewAdminController creates a new admin controller
func NewAdminController(directory UserDirectory) *AdminController {
	return &AdminController{directory: directory}
}

// Users returns a copy of the last successfully fetched list
func (a *AdminController) Users() []domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]domain.User(nil), a.users...)
}

// Refresh refetches the user list. On failure the previous list is kept.
func (a *AdminController) Refresh(ctx context.Context) ([]domain.User, error) {
	users, err := a.directory.Users(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.users = users
	a.mu.Unlock()

	return append([]domain.User(nil), users...), nil
}

// afterMutation refetches the list. A failed refetch does not undo a
// mutation the backend already confirmed.
func (a *AdminController) afterMutation(ctx context.Context, op string) {
	if _, err := a.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Str("op", op).Msg("User list refetch failed")
	}
}

// CreateUser adds a user
func (a *AdminController) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if err := validateRequired(req); err != nil {
		return nil, err
	}
	perms, err := parsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	user, err := a.directory.CreateUser(ctx, domain.UserInput{
		Name:        req.Name,
		Username:    req.Username,
		Role:        req.Role,
		Password:    req.Password,
		Permissions: perms,
	})
	if err != nil {
		logger.Error().Err(err).Str("username", req.Username).Msg("Create user failed")
		return nil, err
	}

	logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User created")
	a.afterMutation(ctx, "create")
	return user, nil
}

// UpdateUser edits a user
func (a *AdminController) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*domain.User, error) {
	if err := validateRequired(req); err != nil {
		return nil, err
	}
	perms, err := parsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	user, err := a.directory.UpdateUser(ctx, id, domain.UserInput{
		Name:        req.Name,
		Username:    req.Username,
		Role:        req.Role,
		Password:    req.Password,
		Permissions: perms,
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", id).Msg("Update user failed")
		return nil, err
	}

	logger.Info().Int64("user_id", id).Msg("User updated")
	a.afterMutation(ctx, "update")
	return user, nil
}

// DeleteUser removes a user
func (a *AdminController) DeleteUser(ctx context.Context, id int64) error {
	if err := a.directory.DeleteUser(ctx, id); err != nil {
		logger.Error().Err(err).Int64("user_id", id).Msg("Delete user failed")
		return err
	}

	logger.Info().Int64("user_id", id).Msg("User deleted")
	a.afterMutation(ctx, "delete")
	return nil
}
