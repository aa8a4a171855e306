package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type OrderService struct {
	Store  OrderStore
	Events events.Publisher
}

func (s *OrderService) publish(ctx context.Context, key string, ev events.Event) {
	events.PublishBestEffort(ctx, s.Events, logging.FromContext(ctx), events.TopicOrders, key, ev)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Store.ListOrders(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.Store.GetOrder(ctx, id)
}

func (s *OrderService) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Store.UserOrders(ctx, userID)
}

// CreateOrder turns the request lines into order items and stores the order
// with the total computed from current product prices.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	userID, err := uuid.Parse(req.User)
	if err != nil {
		return nil, fmt.Errorf("%w: user must be a uuid", ErrValidation)
	}
	if len(req.OrderItems) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}

	lines := make([]repo.OrderLine, 0, len(req.OrderItems))
	for i, item := range req.OrderItems {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: orderItems[%d].quantity must be at least 1", ErrValidation, i)
		}
		productID, err := uuid.Parse(item.Product)
		if err != nil {
			return nil, fmt.Errorf("%w: orderItems[%d].product must be a uuid", ErrValidation, i)
		}
		lines = append(lines, repo.OrderLine{ProductID: productID, Quantity: item.Quantity})
	}

	order := &models.Order{
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		Status:           strings.TrimSpace(req.Status),
		UserID:           userID,
	}
	if err := s.Store.CreateOrder(ctx, order, lines); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, order.ID.String(), events.Event{
		"type":       "order_created",
		"orderID":    order.ID,
		"userID":     order.UserID,
		"items":      len(order.OrderItems),
		"totalPrice": order.TotalPrice,
	})
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status must not be empty", ErrValidation)
	}
	order, err := s.Store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	s.publish(ctx, id.String(), events.Event{
		"type":    "order_status_updated",
		"orderID": id,
		"status":  order.Status,
	})
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	removed, err := s.Store.DeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.publish(ctx, id.String(), events.Event{
		"type":         "order_deleted",
		"orderID":      id,
		"removedItems": len(removed),
	})
	return nil
}

func (s *OrderService) CountOrders(ctx context.Context) (int64, error) {
	return s.Store.CountOrders(ctx)
}

func (s *OrderService) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.Store.TotalSales(ctx)
}
