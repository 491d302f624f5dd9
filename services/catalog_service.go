package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"storefront-service/cache"
	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	Title         string          `json:"title" binding:"required"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	ImageURL      string          `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"`
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
}

// CategoryRequest is the payload for the create-or-update category
// operation. A nil ID creates, a set ID updates.
type CategoryRequest struct {
	ID       *uuid.UUID `json:"id"`
	Name     string     `json:"name" binding:"required,max=100"`
	ImageURL string     `json:"image_url"`
}

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ProductPage is one page of the public product listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Meta     PageMeta         `json:"meta"`
}

// CatalogService defines the interface for catalog business logic:
// the public product listing plus admin product and category CRUD.
type CatalogService interface {
	ListProducts(ctx context.Context, categoryName string, page int) (*ProductPage, *ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError
	AdjustStock(ctx context.Context, id uuid.UUID, change int) (int, *ServiceError)

	ListCategories(ctx context.Context) ([]models.Category, *ServiceError)
	SaveCategory(ctx context.Context, req *CategoryRequest) (*models.Category, *ServiceError)
	DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	listCache    cache.ProductListCache
	pageSize     int
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService. listCache may be nil
// when caching is not configured.
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	listCache cache.ProductListCache,
	pageSize int,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		listCache:    listCache,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// ListProducts returns one title-ordered page of products, optionally
// filtered by category name, with pagination metadata.
func (s *catalogServiceImpl) ListProducts(ctx context.Context, categoryName string, page int) (*ProductPage, *ServiceError) {
	if page < 1 {
		page = 1
	}

	if s.listCache != nil {
		var cached ProductPage
		if ok := s.listCache.Get(ctx, categoryName, page, &cached); ok {
			return &cached, nil
		}
	}

	products, total, err := s.productRepo.FindPage(ctx, categoryName, page, s.pageSize)
	if err != nil {
		s.logger.Error("Failed to list products", zap.String("category", categoryName), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch products"}
	}

	result := &ProductPage{
		Products: products,
		Meta: PageMeta{
			Page:       page,
			Limit:      s.pageSize,
			Total:      total,
			TotalPages: calculateTotalPages(total, s.pageSize),
		},
	}

	if s.listCache != nil {
		s.listCache.SetAsync(categoryName, page, result)
	}
	return result, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	return product, nil
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, *ServiceError) {
	if svcErr := s.validateProduct(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	product := &models.Product{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.String("title", req.Title), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.invalidateListCache()
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("title", product.Title))
	return product, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*models.Product, *ServiceError) {
	if svcErr := s.validateProduct(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	product.Title = req.Title
	product.Author = req.Author
	product.Description = req.Description
	product.Price = req.Price
	product.ImageURL = req.ImageURL
	product.StockQuantity = req.StockQuantity
	product.CategoryID = req.CategoryID
	product.Category = nil

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}

	s.invalidateListCache()
	return product, nil
}

// DeleteProduct removes a product. Products referenced by order items
// cannot be deleted.
func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductReferenced) {
			return &ServiceError{StatusCode: 409, Message: "Product is part of existing orders and cannot be deleted"}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}

	s.invalidateListCache()
	return nil
}

// AdjustStock applies a signed delta to a product's stock, clamping at
// zero, and returns the new quantity.
func (s *catalogServiceImpl) AdjustStock(ctx context.Context, id uuid.UUID, change int) (int, *ServiceError) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		return 0, &ServiceError{StatusCode: 500, Message: "Failed to adjust stock"}
	}

	product.StockQuantity += change
	if product.StockQuantity < 0 {
		product.StockQuantity = 0
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to adjust stock", zap.String("product_id", id.String()), zap.Error(err))
		return 0, &ServiceError{StatusCode: 500, Message: "Failed to adjust stock"}
	}

	s.invalidateListCache()
	return product.StockQuantity, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]models.Category, *ServiceError) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch categories"}
	}
	return categories, nil
}

// SaveCategory creates or updates a category. The slug is always
// re-derived from the name at save time.
func (s *catalogServiceImpl) SaveCategory(ctx context.Context, req *CategoryRequest) (*models.Category, *ServiceError) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Category name is required"}
	}

	if req.ID == nil {
		category := &models.Category{
			Name:     req.Name,
			Slug:     GenerateSlug(req.Name),
			ImageURL: req.ImageURL,
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			s.logger.Error("Failed to create category", zap.String("name", req.Name), zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to save category"}
		}
		s.invalidateListCache()
		return category, nil
	}

	category, err := s.categoryRepo.FindByID(ctx, *req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Category not found"}
		}
		s.logger.Error("Failed to load category", zap.String("category_id", req.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save category"}
	}

	category.Name = req.Name
	category.Slug = GenerateSlug(req.Name)
	category.ImageURL = req.ImageURL
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		s.logger.Error("Failed to update category", zap.String("category_id", category.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save category"}
	}

	s.invalidateListCache()
	return category, nil
}

// DeleteCategory removes a category unconditionally; its products stay
// behind with a dangling category reference, matching the schema's
// no-cascade behavior.
func (s *catalogServiceImpl) DeleteCategory(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Category not found"}
		}
		s.logger.Error("Failed to delete category", zap.String("category_id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete category"}
	}

	s.invalidateListCache()
	return nil
}

func (s *catalogServiceImpl) validateProduct(ctx context.Context, req *ProductRequest) *ServiceError {
	if req.Price.IsNegative() {
		return &ServiceError{StatusCode: 400, Message: "Price cannot be negative"}
	}
	if req.StockQuantity < 0 {
		return &ServiceError{StatusCode: 400, Message: "Stock quantity cannot be negative"}
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 400, Message: "Category not found"}
		}
		s.logger.Error("Failed to load category", zap.String("category_id", req.CategoryID.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to validate product"}
	}
	return nil
}

func (s *catalogServiceImpl) invalidateListCache() {
	if s.listCache != nil {
		s.listCache.Invalidate()
	}
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
)

// GenerateSlug derives a URL-safe identifier from a display name:
// lowercase, alphanumeric and hyphens only, spaces collapsed to one
// hyphen.
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	return slug
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
