package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/api/validators"
	"github.com/skumawat/bidkart-backend/internal/listings"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

type createProductRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// CreateProduct registers a product in the buyer's catalog.
func CreateProduct(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseCategory(req.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		product, err := svc.CreateProduct(r.Context(), caller.UserID, listings.CreateProductInput{
			SKU:         req.SKU,
			Name:        req.Name,
			Description: req.Description,
			Category:    category,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ListMyProducts returns the caller's catalog, newest first.
func ListMyProducts(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListProducts(r.Context(), listings.ListProductsInput{
			OwnerUserID: caller.UserID,
			Pagination:  params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type createAdRequest struct {
	ProductID       string        `json:"product_id" validate:"required,uuid"`
	Address         types.Address `json:"address" validate:"required"`
	PricePerProduct string        `json:"price_per_product" validate:"required"`
	Quantity        int           `json:"quantity" validate:"required,gt=0"`
}

// CreateAd posts a sourcing ad for one of the caller's products.
func CreateAd(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createAdRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParsePathUUID(req.ProductID, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := decimal.NewFromString(strings.TrimSpace(req.PricePerProduct))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		ad, err := svc.CreateAd(r.Context(), caller.UserID, listings.CreateAdInput{
			ProductID:       productID,
			Address:         req.Address,
			PricePerProduct: price,
			Quantity:        req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ad)
	}
}

// ListMyAds returns the caller's sourcing ads.
func ListMyAds(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListAds(r.Context(), listings.ListAdsInput{
			OwnerUserID: caller.UserID,
			Pagination:  params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetAd returns a single ad by id.
func GetAd(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adID, err := validators.ParsePathUUID(chi.URLParam(r, "adId"), "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ad, err := svc.GetAd(r.Context(), adID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ad)
	}
}

// DeactivateAd withdraws an ad from the open marketplace.
func DeactivateAd(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adID, err := validators.ParsePathUUID(chi.URLParam(r, "adId"), "adId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeactivateAd(r.Context(), adID, caller.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// ListOpenAds returns active ads the calling vendor has not decided yet.
func ListOpenAds(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := openInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListOpenAds(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListOpenProducts returns active products the calling vendor has not decided yet.
func ListOpenProducts(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := openInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListOpenProducts(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func openInput(r *http.Request) (*listings.ListOpenInput, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}
	if caller.VendorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context required")
	}
	params, err := cursorParams(r)
	if err != nil {
		return nil, err
	}
	input := listings.ListOpenInput{
		VendorID:   *caller.VendorID,
		Pagination: params,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseCategory(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	return &input, nil
}
