package listings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// Repository exposes persistence helpers for products and ads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProduct(ctx context.Context, product *models.Product) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error)
	ListOpenProducts(ctx context.Context, params listOpenParams) ([]models.Product, *pagination.Cursor, error)

	CreateAd(ctx context.Context, ad *models.Ad) error
	FindAd(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	ListAds(ctx context.Context, params listAdsParams) ([]models.Ad, *pagination.Cursor, error)
	ListOpenAds(ctx context.Context, params listOpenParams) ([]models.Ad, *pagination.Cursor, error)
	DeactivateAd(ctx context.Context, id, ownerUserID uuid.UUID, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a listings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProductsParams struct {
	OwnerUserID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type listAdsParams struct {
	OwnerUserID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type listOpenParams struct {
	VendorID uuid.UUID
	ItemType enums.OfferItemType
	Category *enums.Category
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) ListProducts(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("owner_user_id = ?", params.OwnerUserID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}

// decidedItemsSubquery yields the item ids the vendor already accepted or
// rejected for the given item type.
func (r *repositoryImpl) decidedItemsSubquery(ctx context.Context, vendorID uuid.UUID, itemType enums.OfferItemType) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.VendorDecisionRecord{}).
		Select("item_id").
		Where("vendor_id = ? AND item_type = ?", vendorID, itemType)
}

func (r *repositoryImpl) ListOpenProducts(ctx context.Context, params listOpenParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.decidedItemsSubquery(ctx, params.VendorID, enums.OfferItemTypeProduct))
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}
	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}

func (r *repositoryImpl) CreateAd(ctx context.Context, ad *models.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

func (r *repositoryImpl) FindAd(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	var ad models.Ad
	err := r.db.WithContext(ctx).First(&ad, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *repositoryImpl) ListAds(ctx context.Context, params listAdsParams) ([]models.Ad, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Ad{}).Where("owner_user_id = ?", params.OwnerUserID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var ads []models.Ad
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&ads).Error; err != nil {
		return nil, nil, err
	}
	if len(ads) > normalized {
		next := ads[normalized]
		ads = ads[:normalized]
		return ads, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return ads, nil, nil
}

func (r *repositoryImpl) ListOpenAds(ctx context.Context, params listOpenParams) ([]models.Ad, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Ad{}).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.decidedItemsSubquery(ctx, params.VendorID, enums.OfferItemTypeAd))
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var ads []models.Ad
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&ads).Error; err != nil {
		return nil, nil, err
	}
	if len(ads) > normalized {
		next := ads[normalized]
		ads = ads[:normalized]
		return ads, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return ads, nil, nil
}

func (r *repositoryImpl) DeactivateAd(ctx context.Context, id, ownerUserID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Ad{}).
		Where("id = ? AND owner_user_id = ? AND is_active = ?", id, ownerUserID, true).
		UpdateColumns(map[string]any{"is_active": false, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
