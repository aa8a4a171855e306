package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type CategoryHTTP struct {
	Svc *service.CatalogService
}

func (h *CategoryHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(cats), "categories": cats})
}

func (h *CategoryHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_category")

	id, err := parseID(c, l, "get_category_failed", "category")
	if err != nil {
		return err
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(l, "get_category_failed", err, "a category with the id of "+id.String()+" does not exist")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"category": cat})
}

func (h *CategoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create_category")

	var req transport.CategoryRequest
	if err := bindValid(c, l, "create_category_failed", &req); err != nil {
		return err
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category_failed", err, "")
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return transport.OK(c, http.StatusOK, echo.Map{"category": cat})
}

func (h *CategoryHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.patch_category")

	id, err := parseID(c, l, "patch_category_failed", "category")
	if err != nil {
		return err
	}
	var req transport.PatchCategoryRequest
	if err := bindValid(c, l, "patch_category_failed", &req); err != nil {
		return err
	}
	cat, err := h.Svc.PatchCategory(ctx, id, req)
	if err != nil {
		return fail(l, "patch_category_failed", err, "the category cannot be updated, it was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"category": cat})
}

func (h *CategoryHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete_category")

	id, err := parseID(c, l, "delete_category_failed", "category")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category_failed", err, "the category with the id of "+id.String()+" is not found")
	}

	l.Info("delete_category_success", "category_id", id)
	return transport.OKMessage(c, http.StatusOK, "the category with the id of "+id.String()+" is deleted", nil)
}
