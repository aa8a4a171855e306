package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/eshop/internal/models"
)

type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

func sortItems(o *models.Order) {
	slices.SortFunc(o.OrderItems, func(a, b models.OrderItem) int {
		return cmp.Compare(a.Position, b.Position)
	})
}

func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.DB.WithContext(ctx).
		Preload("User", userSummary).
		Preload("OrderItems").
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		sortItems(&orders[i])
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("User", userSummary).
		Preload("OrderItems.Product.Category").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	sortItems(&order)
	return &order, nil
}

func (r *GormRepo) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.DB.WithContext(ctx).
		Preload("OrderItems.Product.Category").
		Where("user_id = ?", userID).
		Order("date_ordered DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		sortItems(&orders[i])
	}
	return orders, nil
}

// CreateOrder writes the order's items, prices them from the referenced
// products and stores the order with the summed total. All writes share one
// transaction, so a failure at any step leaves no items behind.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, lines []OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidReference)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := r.exists(ctx, tx, &models.User{}, order.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return invalidRef("user", order.UserID)
		}

		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}

		for i, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Position:  i,
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		var items []models.OrderItem
		if err := tx.Preload("Product").Where("order_id = ?", order.ID).Order("position ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("load order items: %w", err)
		}

		total := decimal.Zero
		for _, item := range items {
			if item.Product == nil {
				return invalidRef("product", item.ProductID)
			}
			total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		order.TotalPrice = total

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.OrderItems = items
		return nil
	})
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrder(ctx, id)
}

// DeleteOrder removes the order together with its items and returns the ids of
// the removed items.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var itemIDs []uuid.UUID
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return itemIDs, nil
}

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	row := r.DB.WithContext(ctx).Model(&models.Order{}).Select("COALESCE(SUM(total_price), 0)").Row()
	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
