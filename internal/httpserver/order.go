package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		return fail(l, "list_orders_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(orders), "orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c, l, "get_order_failed", "order")
	if err != nil {
		return err
	}
	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_failed", err, "the order with the given id was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := bindValid(c, l, "create_order_failed", &req); err != nil {
		return err
	}
	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return fail(l, "create_order_failed", err, "")
	}

	l.Info("create_order_success", "order_id", order.ID, "total_price", order.TotalPrice.String())
	return transport.OK(c, http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order_status")

	id, err := parseID(c, l, "update_order_status_failed", "order")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := bindValid(c, l, "update_order_status_failed", &req); err != nil {
		return err
	}
	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_failed", err, "the order cannot be updated, it was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseID(c, l, "delete_order_failed", "order")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteOrder(ctx, id); err != nil {
		return fail(l, "delete_order_failed", err, "the order with the id of "+id.String()+" is not found")
	}

	l.Info("delete_order_success", "order_id", id)
	return transport.OKMessage(c, http.StatusOK, "the order with the id of "+id.String()+" is deleted", nil)
}

func (h *OrderHTTP) TotalSales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.total_sales")

	total, err := h.Svc.TotalSales(ctx)
	if err != nil {
		return fail(l, "total_sales_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"totalsales": total})
}

func (h *OrderHTTP) CountOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.count_orders")

	n, err := h.Svc.CountOrders(ctx)
	if err != nil {
		return fail(l, "count_orders_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"orderCount": n})
}

func (h *OrderHTTP) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.user_orders")

	id, err := parseID(c, l, "user_orders_failed", "user")
	if err != nil {
		return err
	}
	orders, err := h.Svc.UserOrders(ctx, id)
	if err != nil {
		return fail(l, "user_orders_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(orders), "userOrders": orders})
}
