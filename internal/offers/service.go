package offers

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/internal/notifications"
	"github.com/skumawat/bidkart-backend/pkg/db"
	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// notifier is the slice of the notification service offers needs.
type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// Service exposes vendor-side offer negotiation operations.
type Service interface {
	Accept(ctx context.Context, actor Actor, item ItemRef, terms AcceptInput) (*models.Offer, error)
	Cancel(ctx context.Context, actor Actor, item ItemRef) error
	Reject(ctx context.Context, actor Actor, item ItemRef) error
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo     Repository
	dbClient *db.Client
	notifier notifier
	logg     *logger.Logger
}

// NewService wires offer negotiation dependencies.
func NewService(repo Repository, dbClient *db.Client, notifier notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offers repository required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offers logger required")
	}
	return &service{repo: repo, dbClient: dbClient, notifier: notifier, logg: logg}, nil
}

// Accept records the vendor's bid: one decision row plus one offer row in a
// single transaction. The write-once decision row is what makes a concurrent
// double-accept collapse to exactly one winner.
func (s *service) Accept(ctx context.Context, actor Actor, item ItemRef, terms AcceptInput) (*models.Offer, error) {
	if err := validateActorItem(actor, item); err != nil {
		return nil, err
	}
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	head, err := s.repo.FindItemHead(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if head == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", item.Type))
	}
	if !head.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item no longer accepts offers")
	}
	if head.OwnerUserID == actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot bid on your own listing")
	}

	offer := &models.Offer{
		ID:                    uuid.New(),
		ItemType:              item.Type,
		ItemID:                item.ID,
		VendorID:              actor.VendorID,
		OwnerUserID:           head.OwnerUserID,
		PricePerProduct:       terms.PricePerProduct,
		DispatchDay:           terms.DispatchDay,
		Remark:                terms.Remark,
		Material:              terms.Material,
		Description:           terms.Description,
		StandardDeliveryPrice: terms.StandardDeliveryPrice,
		ExpediteDeliveryPrice: terms.ExpediteDeliveryPrice,
		Status:                enums.OfferStatusPending,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateOffer(ctx, offer); err != nil {
			return err
		}
		decision := &models.VendorDecisionRecord{
			ID:       uuid.New(),
			VendorID: actor.VendorID,
			ItemType: item.Type,
			ItemID:   item.ID,
			Decision: enums.VendorDecisionAccepted,
			OfferID:  &offer.ID,
		}
		return txRepo.CreateDecision(ctx, decision)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "ux_offers_item_vendor") ||
			db.IsUniqueViolation(err, "ux_vendor_decisions_vendor_item") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item already decided by this vendor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept offer")
	}

	s.notifyOwner(ctx, head.OwnerUserID, item)
	return offer, nil
}

// Cancel removes the vendor's pending offer together with its decision row,
// so the listing reappears in the vendor's open feed and a fresh bid is
// possible.
func (s *service) Cancel(ctx context.Context, actor Actor, item ItemRef) error {
	if err := validateActorItem(actor, item); err != nil {
		return err
	}

	var changed bool
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		changed, err = txRepo.DeleteOffer(ctx, item, actor.VendorID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return txRepo.DeleteDecision(ctx, item, actor.VendorID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel offer")
	}
	if changed {
		return nil
	}

	offer, err := s.repo.FindOffer(ctx, item, actor.VendorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("offer in status %s cannot be withdrawn", offer.Status))
}

// Reject tombstones the listing for this vendor without creating an offer.
// The listing never reappears in the vendor's open feed.
func (s *service) Reject(ctx context.Context, actor Actor, item ItemRef) error {
	if err := validateActorItem(actor, item); err != nil {
		return err
	}

	head, err := s.repo.FindItemHead(ctx, item)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if head == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", item.Type))
	}

	decision := &models.VendorDecisionRecord{
		ID:       uuid.New(),
		VendorID: actor.VendorID,
		ItemType: item.Type,
		ItemID:   item.ID,
		Decision: enums.VendorDecisionRejected,
	}
	if err := s.repo.CreateDecision(ctx, decision); err != nil {
		if db.IsUniqueViolation(err, "ux_vendor_decisions_vendor_item") {
			return pkgerrors.New(pkgerrors.CodeConflict, "item already decided by this vendor")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject item")
	}
	return nil
}

// List returns the buyer-facing view of an item's open offers, enriched with
// vendor metadata, sorted over the whole set, then paginated.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Item.ID == uuid.Nil || !input.Item.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item reference required")
	}
	if input.SortBy == "" {
		input.SortBy = SortByPrice
	}
	if input.SortOrder == "" {
		input.SortOrder = SortAsc
	}

	rows, err := s.repo.ListOffersForItem(ctx, input.Item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}

	vendorIDs := make([]uuid.UUID, 0, len(rows))
	for _, offer := range rows {
		vendorIDs = append(vendorIDs, offer.VendorID)
	}
	vendors, err := s.repo.FindVendors(ctx, vendorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendors")
	}

	views := make([]OfferView, 0, len(rows))
	for _, offer := range rows {
		view := OfferView{Offer: offer}
		if vendor, ok := vendors[offer.VendorID]; ok {
			view.VendorName = vendor.Name
			view.VendorRating = vendor.Rating
			view.VendorAddress = vendor.MerchantAddress
			view.VendorPhone = vendor.Phone
		}
		views = append(views, view)
	}

	sortViews(views, input.SortBy, input.SortOrder)

	page := pagination.NormalizePage(input.Page)
	start, end := page.Bounds(len(views))
	return &ListResult{
		Items: views[start:end],
		Total: len(views),
		Page:  page.Number,
		Size:  page.Size,
	}, nil
}

func sortViews(views []OfferView, by SortBy, order SortOrder) {
	less := func(a, b OfferView) bool {
		switch by {
		case SortByDispatchDay:
			return a.DispatchDay < b.DispatchDay
		case SortByStandardDelivery:
			return a.StandardDeliveryPrice.LessThan(b.StandardDeliveryPrice)
		case SortByExpediteDelivery:
			return a.ExpediteDeliveryPrice.LessThan(b.ExpediteDeliveryPrice)
		default:
			return a.PricePerProduct.LessThan(b.PricePerProduct)
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if order == SortDesc {
			return less(views[j], views[i])
		}
		return less(views[i], views[j])
	})
}

func (s *service) notifyOwner(ctx context.Context, ownerUserID uuid.UUID, item ItemRef) {
	_, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  ownerUserID,
		Type:    enums.NotificationTypeOfferAccepted,
		Title:   "New offer received",
		Message: fmt.Sprintf("A vendor placed an offer on your %s", item.Type),
	})
	if err != nil {
		logCtx := s.logg.WithUserID(ctx, ownerUserID.String())
		s.logg.Error(logCtx, "offer notification failed", err)
	}
}

func validateActorItem(actor Actor, item ItemRef) error {
	if actor.UserID == uuid.Nil || actor.VendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor actor required")
	}
	if item.ID == uuid.Nil || !item.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "item reference required")
	}
	return nil
}

func validateTerms(terms AcceptInput) error {
	if !terms.PricePerProduct.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_per_product must be positive")
	}
	if terms.DispatchDay <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "dispatch_day must be positive")
	}
	if terms.StandardDeliveryPrice.IsNegative() || terms.ExpediteDeliveryPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery prices cannot be negative")
	}
	return nil
}
