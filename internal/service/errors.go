package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/eshop/internal/repo"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = gorm.ErrRecordNotFound
	ErrInvalidReference = repo.ErrInvalidReference
	ErrEmailTaken       = repo.ErrEmailTaken
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("password is wrong")
	ErrSearchDisabled   = errors.New("search is not configured")
)
