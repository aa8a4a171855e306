package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/images"
	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/transport"
	"github.com/Skotchmaster/eshop/internal/util"
)

// Upload is an image file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CatalogService struct {
	Store  CatalogStore
	Images images.Store
	Events events.Publisher
	// Search and Cache are optional.
	Search SearchIndex
	Cache  ProductCache
	// PublicBaseURL, when set, replaces the request origin in image URLs.
	PublicBaseURL string
	Now           func() time.Time
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CatalogService) publish(ctx context.Context, topic, key string, ev events.Event) {
	events.PublishBestEffort(ctx, s.Events, logging.FromContext(ctx), topic, key, ev)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.Store.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	cat := &models.Category{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := s.Store.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.publish(ctx, events.TopicCategories, cat.ID.String(), events.Event{
		"type":       "category_created",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})
	return cat, nil
}

func (s *CatalogService) PatchCategory(ctx context.Context, id uuid.UUID, req transport.PatchCategoryRequest) (*models.Category, error) {
	cat, err := s.Store.PatchCategory(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("patch category: %w", err)
	}
	s.refreshCategoryProducts(ctx, cat.ID)
	s.publish(ctx, events.TopicCategories, cat.ID.String(), events.Event{
		"type":       "category_updated",
		"categoryID": cat.ID,
		"name":       cat.Name,
	})
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.refreshCategoryProducts(ctx, id)
	s.publish(ctx, events.TopicCategories, id.String(), events.Event{
		"type":       "category_deleted",
		"categoryID": id,
	})
	return nil
}

// refreshCategoryProducts drops cached copies of the category's products and
// reindexes them, since both embed the category. Best effort, like
// afterProductWrite.
func (s *CatalogService) refreshCategoryProducts(ctx context.Context, categoryID uuid.UUID) {
	if s.Cache == nil && s.Search == nil {
		return
	}
	l := logging.FromContext(ctx)
	prods, err := s.Store.ListProducts(ctx, repo.ProductFilter{CategoryIDs: []uuid.UUID{categoryID}})
	if err != nil {
		l.Warn("category_products_refresh_failed", "category_id", categoryID, "error", err)
		return
	}
	for i := range prods {
		p := &prods[i]
		if s.Cache != nil {
			if err := s.Cache.Delete(ctx, p.ID); err != nil {
				l.Warn("product_cache_evict_failed", "product_id", p.ID, "error", err)
			}
		}
		if s.Search != nil {
			if err := s.Search.IndexProduct(ctx, p); err != nil {
				l.Warn("product_index_failed", "product_id", p.ID, "error", err)
			}
		}
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryIDs []uuid.UUID) ([]models.Product, error) {
	return s.Store.ListProducts(ctx, repo.ProductFilter{CategoryIDs: categoryIDs})
}

// FeaturedProducts returns featured products; limit 0 means all of them.
func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrValidation)
	}
	return s.Store.ListProducts(ctx, repo.ProductFilter{Featured: true, Limit: limit})
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	return s.Store.CountProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	l := logging.FromContext(ctx)
	if s.Cache != nil {
		p, ok, err := s.Cache.Get(ctx, id)
		if err != nil {
			l.Warn("product_cache_read_failed", "product_id", id, "error", err)
		}
		if ok {
			return p, nil
		}
	}

	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, p); err != nil {
			l.Warn("product_cache_write_failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

func (s *CatalogService) imageURL(stored, origin string) string {
	if !strings.HasPrefix(stored, "/") {
		return stored
	}
	base := s.PublicBaseURL
	if base == "" {
		base = origin
	}
	return strings.TrimSuffix(base, "/") + stored
}

func (s *CatalogService) storeImage(ctx context.Context, img Upload, origin string) (string, error) {
	if img.Body == nil {
		return "", fmt.Errorf("%w: no image in the request", ErrValidation)
	}
	ext, err := images.Extension(img.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	name := images.FileName(img.Filename, ext, s.now())
	stored, err := s.Images.Save(ctx, name, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.imageURL(stored, origin), nil
}

func (s *CatalogService) dropImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.Images.Delete(ctx, path.Base(url)); err != nil {
		logging.FromContext(ctx).Warn("image_delete_failed", "image", url, "error", err)
	}
}

// afterProductWrite refreshes the derived views of a product. Failures are
// logged and never fail the write.
func (s *CatalogService) afterProductWrite(ctx context.Context, p *models.Product, eventType string) {
	l := logging.FromContext(ctx)
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, p.ID); err != nil {
			l.Warn("product_cache_evict_failed", "product_id", p.ID, "error", err)
		}
	}
	if s.Search != nil {
		if err := s.Search.IndexProduct(ctx, p); err != nil {
			l.Warn("product_index_failed", "product_id", p.ID, "error", err)
		}
	}
	s.publish(ctx, events.TopicProducts, p.ID.String(), events.Event{
		"type":       eventType,
		"productID":  p.ID,
		"name":       p.Name,
		"categoryID": p.CategoryID,
		"price":      p.Price,
	})
}

// CreateProduct checks the category before the image is stored and removes
// the stored image again if the product cannot be written.
func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest, img Upload, origin string) (*models.Product, error) {
	catID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: category must be a uuid", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	ok, err := s.Store.CategoryExists(ctx, catID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: category %s does not exist", ErrInvalidReference, catID)
	}

	url, err := s.storeImage(ctx, img, origin)
	if err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:            req.Name,
		Description:     req.Description,
		RichDescription: req.RichDescription,
		Image:           url,
		Brand:           req.Brand,
		Price:           req.Price,
		CategoryID:      catID,
		CountInStock:    req.CountInStock,
		Rating:          req.Rating,
		NumReviews:      req.NumReviews,
		IsFeatured:      req.IsFeatured,
	}
	if err := s.Store.CreateProduct(ctx, prod); err != nil {
		s.dropImage(ctx, url)
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.afterProductWrite(ctx, prod, "product_created")
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	prod, err := s.Store.PatchProduct(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("patch product: %w", err)
	}
	s.afterProductWrite(ctx, prod, "product_updated")
	return prod, nil
}

// ReplaceImage stores a new image for an existing product and removes the
// previous file once the product points at the new one.
func (s *CatalogService) ReplaceImage(ctx context.Context, id uuid.UUID, img Upload, origin string) (*models.Product, error) {
	if _, err := s.Store.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	url, err := s.storeImage(ctx, img, origin)
	if err != nil {
		return nil, err
	}
	prod, previous, err := s.Store.SetProductImage(ctx, id, url)
	if err != nil {
		s.dropImage(ctx, url)
		return nil, fmt.Errorf("set product image: %w", err)
	}
	if previous != url {
		s.dropImage(ctx, previous)
	}
	s.afterProductWrite(ctx, prod, "product_image_updated")
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	l := logging.FromContext(ctx)
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, id); err != nil {
			l.Warn("product_cache_evict_failed", "product_id", id, "error", err)
		}
	}
	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, id); err != nil {
			l.Warn("product_unindex_failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, events.TopicProducts, id.String(), events.Event{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

// SearchProducts runs a full-text query and loads the matching products in
// rank order.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	if s.Search == nil {
		return 0, nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}

	from, limit := util.Calculate(page, size)
	total, ids, err := s.Search.Search(ctx, query, from, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}
	prods, err := s.Store.ProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, fmt.Errorf("load search hits: %w", err)
	}
	return total, prods, nil
}

// Reindex pushes every stored product into the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Search == nil {
		return 0, ErrSearchDisabled
	}
	prods, err := s.Store.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	for i := range prods {
		if err := s.Search.IndexProduct(ctx, &prods[i]); err != nil {
			return i, fmt.Errorf("index product %s: %w", prods[i].ID, err)
		}
	}
	return len(prods), nil
}
