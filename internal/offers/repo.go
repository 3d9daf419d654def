package offers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
)

// itemHead is the slice of a listing the negotiation flow needs: who owns it
// and whether it still takes bids.
type itemHead struct {
	OwnerUserID uuid.UUID
	IsActive    bool
}

// Repository exposes persistence helpers for offers and vendor decisions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOffer(ctx context.Context, offer *models.Offer) error
	CreateDecision(ctx context.Context, decision *models.VendorDecisionRecord) error
	FindOffer(ctx context.Context, item ItemRef, vendorID uuid.UUID) (*models.Offer, error)
	ListOffersForItem(ctx context.Context, item ItemRef) ([]models.Offer, error)
	DeleteOffer(ctx context.Context, item ItemRef, vendorID uuid.UUID) (bool, error)
	DeleteDecision(ctx context.Context, item ItemRef, vendorID uuid.UUID) error

	FindItemHead(ctx context.Context, item ItemRef) (*itemHead, error)
	FindVendors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vendor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an offers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateOffer(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repositoryImpl) CreateDecision(ctx context.Context, decision *models.VendorDecisionRecord) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

func (r *repositoryImpl) FindOffer(ctx context.Context, item ItemRef, vendorID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		First(&offer, "item_type = ? AND item_id = ? AND vendor_id = ?", item.Type, item.ID, vendorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) ListOffersForItem(ctx context.Context, item ItemRef) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ?", item.Type, item.ID).
		Find(&offers).Error
	return offers, err
}

// DeleteOffer removes a withdrawn bid outright. Offers the buyer already
// accepted back an order and cannot be removed, which the status guard
// enforces.
func (r *repositoryImpl) DeleteOffer(ctx context.Context, item ItemRef, vendorID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("item_type = ? AND item_id = ? AND vendor_id = ? AND status = ?",
			item.Type, item.ID, vendorID, enums.OfferStatusPending).
		Delete(&models.Offer{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) DeleteDecision(ctx context.Context, item ItemRef, vendorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("vendor_id = ? AND item_type = ? AND item_id = ?", vendorID, item.Type, item.ID).
		Delete(&models.VendorDecisionRecord{}).Error
}

func (r *repositoryImpl) FindItemHead(ctx context.Context, item ItemRef) (*itemHead, error) {
	switch item.Type {
	case enums.OfferItemTypeProduct:
		var product models.Product
		err := r.db.WithContext(ctx).First(&product, "id = ?", item.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &itemHead{OwnerUserID: product.OwnerUserID, IsActive: product.IsActive}, nil
	case enums.OfferItemTypeAd:
		var ad models.Ad
		err := r.db.WithContext(ctx).First(&ad, "id = ?", item.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &itemHead{OwnerUserID: ad.OwnerUserID, IsActive: ad.IsActive}, nil
	}
	return nil, nil
}

func (r *repositoryImpl) FindVendors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vendor, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.Vendor{}, nil
	}
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&vendors).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Vendor, len(vendors))
	for _, v := range vendors {
		out[v.ID] = v
	}
	return out, nil
}
