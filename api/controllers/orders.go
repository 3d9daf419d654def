package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/api/middleware"
	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/api/validators"
	"github.com/skumawat/bidkart-backend/internal/orders"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/types"
)

type checkoutRequest struct {
	OfferID      string        `json:"offer_id" validate:"required,uuid"`
	Quantity     int           `json:"quantity" validate:"required,gt=0"`
	DeliveryType string        `json:"delivery_type" validate:"required"`
	Address      types.Address `json:"address" validate:"required"`
}

// Checkout converts an accepted offer into a pending order with a gateway
// order attached. Amounts are computed server side from the stored offer.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(req.OfferID, "offer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deliveryType, err := enums.ParseDeliveryType(req.DeliveryType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery type"))
			return
		}

		order, err := svc.Checkout(r.Context(), actor, orders.CheckoutInput{
			OfferID:      offerID,
			Quantity:     req.Quantity,
			DeliveryType: deliveryType,
			Address:      req.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// GetOrderByGatewayID resolves an order from the gateway order reference.
// Buyers and the selling vendor may read it.
func GetOrderByGatewayID(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		gatewayOrderID := strings.TrimSpace(chi.URLParam(r, "gatewayOrderId"))
		if gatewayOrderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required"))
			return
		}
		order, err := svc.GetByGatewayOrderID(r.Context(), actor, gatewayOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListBuyerOrders returns the caller's orders, newest first.
func ListBuyerOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, input, err := orderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListForBuyer(r.Context(), actor, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListVendorOrders returns paid orders sold by the calling vendor.
func ListVendorOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, input, err := orderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListForVendor(r.Context(), actor, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type fulfillmentRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateFulfillment advances an order along the fulfillment pipeline.
func UpdateFulfillment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := orderActorAndID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseFulfillmentStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment status"))
			return
		}

		order, err := svc.UpdateFulfillment(r.Context(), actor, orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CancelOrder marks a captured order cancelled on behalf of the buyer.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := orderActorAndID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Cancel(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// RefundOrder issues a gateway refund for a cancelled, captured order.
// Admin only.
func RefundOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := orderActorAndID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Refund(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminListOrders pages the full order book with optional filters.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.AdminListInput{Pagination: params}
		if raw := strings.TrimSpace(r.URL.Query().Get("paymentStatus")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
				return
			}
			input.PaymentStatus = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("fulfillmentStatus")); raw != "" {
			status, err := enums.ParseFulfillmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment status"))
				return
			}
			input.FulfillmentStatus = &status
		}
		buyerID, err := validators.ParseQueryUUID(r, "buyerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.BuyerID = buyerID
		vendorID, err := validators.ParseQueryUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.VendorID = vendorID

		result, err := svc.AdminList(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminSearchOrders looks up orders by gateway order reference.
func AdminSearchOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		gatewayOrderID := strings.TrimSpace(r.URL.Query().Get("gatewayOrderId"))
		if gatewayOrderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gatewayOrderId is required"))
			return
		}
		items, err := svc.AdminSearch(r.Context(), actor, gatewayOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func orderActor(r *http.Request) (orders.Actor, error) {
	caller, err := identity(r)
	if err != nil {
		return orders.Actor{}, err
	}
	return actorFromIdentity(caller), nil
}

func actorFromIdentity(caller middleware.Identity) orders.Actor {
	return orders.Actor{
		UserID:   caller.UserID,
		Role:     caller.Role,
		VendorID: caller.VendorID,
	}
}

func orderActorAndID(r *http.Request) (orders.Actor, uuid.UUID, error) {
	actor, err := orderActor(r)
	if err != nil {
		return orders.Actor{}, uuid.Nil, err
	}
	orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		return orders.Actor{}, uuid.Nil, err
	}
	return actor, orderID, nil
}

func orderListInput(r *http.Request) (orders.Actor, *orders.ListInput, error) {
	actor, err := orderActor(r)
	if err != nil {
		return orders.Actor{}, nil, err
	}
	params, err := cursorParams(r)
	if err != nil {
		return orders.Actor{}, nil, err
	}
	input := orders.ListInput{Pagination: params}
	if raw := strings.TrimSpace(r.URL.Query().Get("paymentStatus")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return orders.Actor{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
		}
		input.PaymentStatus = &status
	}
	return actor, &input, nil
}
