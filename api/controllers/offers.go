package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/api/middleware"
	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/api/validators"
	"github.com/skumawat/bidkart-backend/internal/offers"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

type acceptOfferRequest struct {
	PricePerProduct       string  `json:"price_per_product" validate:"required"`
	DispatchDay           int     `json:"dispatch_day" validate:"required,gt=0"`
	Remark                *string `json:"remark,omitempty"`
	Material              *string `json:"material,omitempty"`
	Description           *string `json:"description,omitempty"`
	StandardDeliveryPrice string  `json:"standard_delivery_price" validate:"required"`
	ExpediteDeliveryPrice string  `json:"expedite_delivery_price" validate:"required"`
}

// AcceptItem records the calling vendor's bid on a listing.
func AcceptItem(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, item, err := offerTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req acceptOfferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terms, err := termsFromRequest(req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Accept(r.Context(), actor, item, *terms)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// RejectItem hides the listing from the calling vendor permanently.
func RejectItem(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, item, err := offerTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Reject(r.Context(), actor, item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

// CancelOffer withdraws the calling vendor's pending bid so they can re-bid later.
func CancelOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, item, err := offerTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Cancel(r.Context(), actor, item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "withdrawn"})
	}
}

// ListOffersForItem returns the sorted offer book for one of the buyer's listings.
func ListOffersForItem(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := itemFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sortBy, err := offers.ParseSortBy(strings.TrimSpace(r.URL.Query().Get("sortBy")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}
		sortOrder, err := offers.ParseSortOrder(strings.TrimSpace(r.URL.Query().Get("sortOrder")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort"))
			return
		}
		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), offers.ListInput{
			Item:      item,
			SortBy:    sortBy,
			SortOrder: sortOrder,
			Page:      page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func offerTarget(r *http.Request) (offers.Actor, offers.ItemRef, error) {
	caller, err := identity(r)
	if err != nil {
		return offers.Actor{}, offers.ItemRef{}, err
	}
	actor, err := offerActor(caller)
	if err != nil {
		return offers.Actor{}, offers.ItemRef{}, err
	}
	item, err := itemFromPath(r)
	if err != nil {
		return offers.Actor{}, offers.ItemRef{}, err
	}
	return actor, item, nil
}

func offerActor(caller middleware.Identity) (offers.Actor, error) {
	if caller.VendorID == nil {
		return offers.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context required")
	}
	return offers.Actor{UserID: caller.UserID, VendorID: *caller.VendorID}, nil
}

func itemFromPath(r *http.Request) (offers.ItemRef, error) {
	itemType, err := enums.ParseOfferItemType(chi.URLParam(r, "itemType"))
	if err != nil {
		return offers.ItemRef{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item type")
	}
	itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
	if err != nil {
		return offers.ItemRef{}, err
	}
	return offers.ItemRef{Type: itemType, ID: itemID}, nil
}

func termsFromRequest(req acceptOfferRequest) (*offers.AcceptInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.PricePerProduct))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	standard, err := decimal.NewFromString(strings.TrimSpace(req.StandardDeliveryPrice))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid standard delivery price")
	}
	expedite, err := decimal.NewFromString(strings.TrimSpace(req.ExpediteDeliveryPrice))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expedite delivery price")
	}
	return &offers.AcceptInput{
		PricePerProduct:       price,
		DispatchDay:           req.DispatchDay,
		Remark:                req.Remark,
		Material:              req.Material,
		Description:           req.Description,
		StandardDeliveryPrice: standard,
		ExpediteDeliveryPrice: expedite,
	}, nil
}
