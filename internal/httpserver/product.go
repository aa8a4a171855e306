package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
	"github.com/Skotchmaster/eshop/internal/util"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func origin(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	var categoryIDs []uuid.UUID
	if raw := c.QueryParam("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				l.Warn("list_products_failed", "status", http.StatusBadRequest, "reason", "category filter is not a uuid", "error", err)
				return echo.NewHTTPError(http.StatusBadRequest, "invalid category id "+part)
			}
			categoryIDs = append(categoryIDs, id)
		}
	}

	prods, err := h.Svc.ListProducts(ctx, categoryIDs)
	if err != nil {
		return fail(l, "list_products_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(prods), "products": prods})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_failed", "product")
	if err != nil {
		return err
	}
	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err, "a product with the id of "+id.String()+" does not exist")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"product": prod})
}

func (h *ProductHTTP) upload(c echo.Context, l *slog.Logger, event string) (service.Upload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn(event, "status", http.StatusBadRequest, "reason", "no image in the request", "error", err)
		return service.Upload{}, nil, echo.NewHTTPError(http.StatusBadRequest, "no image in the request")
	}
	f, err := fh.Open()
	if err != nil {
		l.Error(event, "status", http.StatusInternalServerError, "reason", "cannot open upload", "error", err)
		return service.Upload{}, nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	up := service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}
	return up, func() { _ = f.Close() }, nil
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := bindValid(c, l, "create_product_failed", &req); err != nil {
		return err
	}
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			l.Warn("create_product_failed", "status", http.StatusBadRequest, "reason", "price is not a number", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "price must be a number")
		}
		req.Price = price
	}

	img, closeImg, err := h.upload(c, l, "create_product_failed")
	if err != nil {
		return err
	}
	defer closeImg()

	prod, err := h.Svc.CreateProduct(ctx, req, img, origin(c))
	if err != nil {
		return fail(l, "create_product_failed", err, "")
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return transport.OK(c, http.StatusOK, echo.Map{"product": prod})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := parseID(c, l, "patch_product_failed", "product")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := bindValid(c, l, "patch_product_failed", &req); err != nil {
		return err
	}
	prod, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product_failed", err, "the product cannot be updated, it was not found")
	}

	l.Info("patch_product_success", "product_id", id)
	return transport.OKMessage(c, http.StatusOK, "the product has been updated successfully", echo.Map{"product": prod})
}

func (h *ProductHTTP) ReplaceImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.replace_image")

	id, err := parseID(c, l, "replace_image_failed", "product")
	if err != nil {
		return err
	}
	img, closeImg, err := h.upload(c, l, "replace_image_failed")
	if err != nil {
		return err
	}
	defer closeImg()

	prod, err := h.Svc.ReplaceImage(ctx, id, img, origin(c))
	if err != nil {
		return fail(l, "replace_image_failed", err, "the product was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"product": prod})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c, l, "delete_product_failed", "product")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_failed", err, "the product was not found")
	}

	l.Info("delete_product_success", "product_id", id)
	return transport.OKMessage(c, http.StatusOK, "the product has been deleted successfully", nil)
}

func (h *ProductHTTP) CountProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.count_products")

	n, err := h.Svc.CountProducts(ctx)
	if err != nil {
		return fail(l, "count_products_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"productCount": n})
}

func (h *ProductHTTP) FeaturedProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.featured_products")

	limit := 0
	if raw := c.Param("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			l.Warn("featured_products_failed", "status", http.StatusBadRequest, "reason", "count is not a positive integer", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "count must be a positive integer")
		}
		limit = n
	}

	prods, err := h.Svc.FeaturedProducts(ctx, limit)
	if err != nil {
		return fail(l, "featured_products_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(prods), "products": prods})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	q := c.QueryParam("q")
	if strings.TrimSpace(q) == "" {
		l.Warn("search_products_failed", "status", http.StatusBadRequest, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, prods, err := h.Svc.SearchProducts(ctx, q, page, size)
	if err != nil {
		return fail(l, "search_products_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"total": total, "products": prods})
}
