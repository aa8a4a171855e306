package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type ProductFilter struct {
	CategoryIDs []uuid.UUID
	Featured    bool
	Limit       int
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Preload("Category")
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.Featured {
		q = q.Where("is_featured = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	items := make([]models.Product, 0)
	if err := q.Order("date_created DESC").Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

// ProductsByIDs loads the given products, keeping the order of ids and
// skipping ids that no longer exist.
func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreateProduct inserts prod after checking, in the same transaction, that its
// category exists.
func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.exists(ctx, tx, &models.Category{}, prod.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return invalidRef("category", prod.CategoryID)
		}
		if err := tx.Omit(clause.Associations).Create(prod).Error; err != nil {
			return err
		}
		return tx.Preload("Category").Where("id = ?", prod.ID).First(prod).Error
	})
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}

		if req.Category != nil {
			catID, err := uuid.Parse(*req.Category)
			if err != nil {
				return invalidRef("category", uuid.Nil)
			}
			ok, err := r.exists(ctx, tx, &models.Category{}, catID)
			if err != nil {
				return err
			}
			if !ok {
				return invalidRef("category", catID)
			}
			prod.CategoryID = catID
		}
		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		if req.RichDescription != nil {
			prod.RichDescription = *req.RichDescription
		}
		if req.Image != nil {
			prod.Image = *req.Image
		}
		if req.Brand != nil {
			prod.Brand = *req.Brand
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.CountInStock != nil {
			prod.CountInStock = *req.CountInStock
		}
		if req.Rating != nil {
			prod.Rating = *req.Rating
		}
		if req.NumReviews != nil {
			prod.NumReviews = *req.NumReviews
		}
		if req.IsFeatured != nil {
			prod.IsFeatured = *req.IsFeatured
		}

		if err := tx.Omit(clause.Associations).Save(&prod).Error; err != nil {
			return err
		}
		return tx.Preload("Category").Where("id = ?", id).First(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// SetProductImage stores a new image URL and returns the updated product and
// the URL it replaced.
func (r *GormRepo) SetProductImage(ctx context.Context, id uuid.UUID, image string) (*models.Product, string, error) {
	var prod models.Product
	var previous string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}
		previous = prod.Image
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Update("image", image).Error; err != nil {
			return err
		}
		return tx.Preload("Category").Where("id = ?", id).First(&prod).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &prod, previous, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
