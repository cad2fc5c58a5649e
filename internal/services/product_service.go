package services

import (
	"context"
	"io"
	"log"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/storage"
)

type ProductService struct {
	Repo   *repositories.ProductRepository
	Images *storage.ImageStore
}

func NewProductService(repo *repositories.ProductRepository, images *storage.ImageStore) *ProductService {
	return &ProductService{Repo: repo, Images: images}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if req.ProductCode == "" || req.Name == "" {
		return nil, apperrors.Validation("product code and name are required")
	}
	if req.RentalPrice < 0 || req.DepositAmount < 0 {
		return nil, apperrors.Validation("prices cannot be negative")
	}
	if existing, _ := s.Repo.GetByCode(ctx, req.ProductCode); existing != nil {
		return nil, apperrors.Validation("product code %s already exists", req.ProductCode)
	}

	product := &models.Product{
		ProductCode:   req.ProductCode,
		Name:          req.Name,
		RentalPrice:   req.RentalPrice,
		DepositAmount: req.DepositAmount,
		ImagePath:     req.ImagePath,
		IsActive:      true,
	}
	if err := s.Repo.Create(ctx, product); err != nil {
		return nil, err
	}
	cache.InvalidateActiveProducts(ctx)
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	return s.Repo.GetByCode(ctx, code)
}

// ListProducts returns products for the catalog screens. The active-only
// listing backs the new-order product picker and is served from Redis when
// warm.
func (s *ProductService) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	if activeOnly {
		if cached, ok := cache.GetActiveProducts(ctx); ok {
			return cached, nil
		}
	}
	products, err := s.Repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		cache.SetActiveProducts(ctx, products)
	}
	return products, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ProductCode != "" && req.ProductCode != product.ProductCode {
		if existing, _ := s.Repo.GetByCode(ctx, req.ProductCode); existing != nil {
			return nil, apperrors.Validation("product code %s already exists", req.ProductCode)
		}
		product.ProductCode = req.ProductCode
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.RentalPrice < 0 || req.DepositAmount < 0 {
		return nil, apperrors.Validation("prices cannot be negative")
	}
	product.RentalPrice = req.RentalPrice
	product.DepositAmount = req.DepositAmount
	if req.ImagePath != "" {
		product.ImagePath = req.ImagePath
	}

	if err := s.Repo.Update(ctx, product); err != nil {
		return nil, err
	}
	cache.InvalidateActiveProducts(ctx)
	return product, nil
}

func (s *ProductService) SetActive(ctx context.Context, id int, active bool) error {
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	cache.InvalidateActiveProducts(ctx)
	return nil
}

// BulkAdd inserts a batch of products, skipping rows with missing fields and
// codes that already exist.
func (s *ProductService) BulkAdd(ctx context.Context, reqs []*models.CreateProductRequest) (*models.BulkAddResult, error) {
	var valid []*models.Product
	var malformed []string
	for _, req := range reqs {
		if req.ProductCode == "" || req.Name == "" || req.RentalPrice < 0 {
			malformed = append(malformed, req.ProductCode)
			continue
		}
		valid = append(valid, &models.Product{
			ProductCode:   req.ProductCode,
			Name:          req.Name,
			RentalPrice:   req.RentalPrice,
			DepositAmount: req.DepositAmount,
		})
	}

	result, err := s.Repo.BulkAdd(ctx, valid)
	if err != nil {
		return nil, err
	}
	result.Skipped = append(result.Skipped, malformed...)
	if len(result.Added) > 0 {
		cache.InvalidateActiveProducts(ctx)
	}
	log.Printf("[Products] bulk add: %d added, %d skipped", len(result.Added), len(result.Skipped))
	return result, nil
}

// AttachImage validates, uploads and records a product image. The stored
// path is an opaque object key resolved through FetchImage.
func (s *ProductService) AttachImage(ctx context.Context, id int, filename, contentType string, body io.Reader) (*models.Product, error) {
	if s.Images == nil {
		return nil, apperrors.Validation("image storage is not configured")
	}
	if !storage.AllowedFile(filename) {
		return nil, apperrors.Validation("file type not allowed: %s", filename)
	}
	product, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.Images.Upload(ctx, product.ProductCode, filename, contentType, body)
	if err != nil {
		return nil, err
	}
	product.ImagePath = key
	if err := s.Repo.Update(ctx, product); err != nil {
		return nil, err
	}
	cache.InvalidateActiveProducts(ctx)
	return product, nil
}

func (s *ProductService) FetchImage(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.Images == nil {
		return nil, apperrors.Validation("image storage is not configured")
	}
	return s.Images.Fetch(ctx, key)
}
