package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// Service exposes buyer catalog management and vendor browse operations.
type Service interface {
	CreateProduct(ctx context.Context, ownerUserID uuid.UUID, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	ListOpenProducts(ctx context.Context, input ListOpenInput) (*ProductListResult, error)

	CreateAd(ctx context.Context, ownerUserID uuid.UUID, input CreateAdInput) (*models.Ad, error)
	GetAd(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	ListAds(ctx context.Context, input ListAdsInput) (*AdListResult, error)
	ListOpenAds(ctx context.Context, input ListOpenInput) (*AdListResult, error)
	DeactivateAd(ctx context.Context, id, ownerUserID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires listings dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, ownerUserID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}

	product := &models.Product{
		OwnerUserID: ownerUserID,
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}

	params := listProductsParams{OwnerUserID: input.OwnerUserID, Limit: input.Pagination.Limit}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	params.Cursor = cursor

	products, next, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductListResult{Items: products, Cursor: encodeCursor(next)}, nil
}

func (s *service) ListOpenProducts(ctx context.Context, input ListOpenInput) (*ProductListResult, error) {
	params, err := openParams(input, enums.OfferItemTypeProduct)
	if err != nil {
		return nil, err
	}

	products, next, err := s.repo.ListOpenProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open products")
	}
	return &ProductListResult{Items: products, Cursor: encodeCursor(next)}, nil
}

// CreateAd snapshots the product's category and the buyer's address at post
// time; later edits to the product do not rewrite existing ads.
func (s *service) CreateAd(ctx context.Context, ownerUserID uuid.UUID, input CreateAdInput) (*models.Ad, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.PricePerProduct.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_product must be positive")
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.OwnerUserID != ownerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another user")
	}

	input.Address.Normalize()
	ad := &models.Ad{
		OwnerUserID:     ownerUserID,
		ProductID:       product.ID,
		Address:         input.Address,
		PricePerProduct: input.PricePerProduct,
		Quantity:        input.Quantity,
		Category:        product.Category,
		IsActive:        true,
	}
	if err := s.repo.CreateAd(ctx, ad); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ad")
	}
	return ad, nil
}

func (s *service) GetAd(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ad id required")
	}
	ad, err := s.repo.FindAd(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ad")
	}
	if ad == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
	}
	return ad, nil
}

func (s *service) ListAds(ctx context.Context, input ListAdsInput) (*AdListResult, error) {
	if input.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}

	params := listAdsParams{OwnerUserID: input.OwnerUserID, Limit: input.Pagination.Limit}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	params.Cursor = cursor

	ads, next, err := s.repo.ListAds(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ads")
	}
	return &AdListResult{Items: ads, Cursor: encodeCursor(next)}, nil
}

func (s *service) ListOpenAds(ctx context.Context, input ListOpenInput) (*AdListResult, error) {
	params, err := openParams(input, enums.OfferItemTypeAd)
	if err != nil {
		return nil, err
	}

	ads, next, err := s.repo.ListOpenAds(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open ads")
	}
	return &AdListResult{Items: ads, Cursor: encodeCursor(next)}, nil
}

// DeactivateAd is idempotent: an already-inactive ad is a no-op success, while
// a missing or foreign ad is NotFound.
func (s *service) DeactivateAd(ctx context.Context, id, ownerUserID uuid.UUID) error {
	if id == uuid.Nil || ownerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ad id and owner user id required")
	}

	changed, err := s.repo.DeactivateAd(ctx, id, ownerUserID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate ad")
	}
	if changed {
		return nil
	}

	ad, err := s.repo.FindAd(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ad")
	}
	if ad == nil || ad.OwnerUserID != ownerUserID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ad not found")
	}
	return nil
}

func openParams(input ListOpenInput, itemType enums.OfferItemType) (listOpenParams, error) {
	if input.VendorID == uuid.Nil {
		return listOpenParams{}, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return listOpenParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return listOpenParams{
		VendorID: input.VendorID,
		ItemType: itemType,
		Category: input.Category,
		Limit:    input.Pagination.Limit,
		Cursor:   cursor,
	}, nil
}

func encodeCursor(next *pagination.Cursor) string {
	if next == nil {
		return ""
	}
	return pagination.EncodeCursor(*next)
}
