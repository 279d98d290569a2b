package application

import (
	"errors"

	"github.com/grse/dashboard/internal/domain"
)

var (
	ErrSessionNotFound  = domain.ErrSessionNotFound
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrPageNotPermitted = errors.New("page not permitted")
	ErrProjectNotFound  = errors.New("project not found")
	ErrQuarterNotFound  = errors.New("quarter not found")
	ErrValidation       = errors.New("validation failed")
)
