package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidReference = errors.New("invalid reference")
	ErrEmailTaken       = errors.New("email already registered")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) exists(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func invalidRef(kind string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s does not exist", ErrInvalidReference, kind, id)
}
