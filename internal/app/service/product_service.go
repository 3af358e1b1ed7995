package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product title is required and price and stock cannot be negative")
)

type ProductListOptions struct {
	CategoryID *uint
	Search     string
}

type CreateProductRequest struct {
	Title       string
	Description string
	Price       int64
	Stock       int
	CategoryID  uint
}

type UpdateProductRequest struct {
	Title       *string
	Description *string
	Price       *int64
	Stock       *int
	CategoryID  *uint
}

type ProductService interface {
	ListProducts(p Pagination, opts ProductListOptions) (PageResult[model.Product], error)
	GetProduct(id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        CacheInvalidator
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	cache CacheInvalidator,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
	}
}

func (s *productService) ListProducts(p Pagination, opts ProductListOptions) (PageResult[model.Product], error) {
	products, total, err := s.productRepo.List(repository.ProductFilter{
		CategoryID: opts.CategoryID,
		Search:     strings.TrimSpace(opts.Search),
		Limit:      p.Limit,
		Offset:     p.Offset(),
	})
	if err != nil {
		return PageResult[model.Product]{}, err
	}
	return newPageResult(products, total, p), nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ensureCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Price < 0 || req.Stock < 0 {
		return nil, ErrInvalidProduct
	}
	if err := s.ensureCategory(req.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Title:       title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":  product.ID,
		"category_id": product.CategoryID,
	})
	invalidate(ctx, s.cache, CacheGroupProducts)
	return s.GetProduct(product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if product.Title == "" || product.Price < 0 || product.Stock < 0 {
		return nil, ErrInvalidProduct
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(*req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
		product.Category = nil
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"price":      product.Price,
		"stock":      product.Stock,
	})
	invalidate(ctx, s.cache, CacheGroupProducts)
	return s.GetProduct(product.ID)
}

// DeleteProduct soft-deletes the product. Cart lines that still reference it
// fail checkout with an insufficient stock error.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	invalidate(ctx, s.cache, CacheGroupProducts)
	return nil
}
