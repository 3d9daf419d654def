package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skumawat/bidkart-backend/api/controllers"
	"github.com/skumawat/bidkart-backend/api/middleware"
	"github.com/skumawat/bidkart-backend/internal/chat"
	"github.com/skumawat/bidkart-backend/internal/listings"
	"github.com/skumawat/bidkart-backend/internal/notifications"
	"github.com/skumawat/bidkart-backend/internal/offers"
	"github.com/skumawat/bidkart-backend/internal/orders"
	"github.com/skumawat/bidkart-backend/internal/realtime"
	"github.com/skumawat/bidkart-backend/pkg/config"
	"github.com/skumawat/bidkart-backend/pkg/db"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      db.Pinger
	CachePinger   db.Pinger
	Presence      controllers.Presence
	HTTPMetrics   *metrics.HTTPMetrics
	Hub           *realtime.Hub
	Listings      listings.Service
	Offers        offers.Service
	Orders        orders.Service
	Notifications notifications.Service
	Chats         chat.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.ClientURL),
	)
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.HTTPMetrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DBPinger, d.CachePinger))
	})

	// Gateway callback. Authenticated by signature, not by bearer token.
	r.Post("/api/v1/payments/verify", controllers.VerifyPayment(d.Orders, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(d.Listings, logg))
			r.Get("/", controllers.ListMyProducts(d.Listings, logg))
		})
		r.Route("/v1/ads", func(r chi.Router) {
			r.Post("/", controllers.CreateAd(d.Listings, logg))
			r.Get("/", controllers.ListMyAds(d.Listings, logg))
			r.Get("/{adId}", controllers.GetAd(d.Listings, logg))
			r.Post("/{adId}/deactivate", controllers.DeactivateAd(d.Listings, logg))
		})

		r.Route("/v1/offers", func(r chi.Router) {
			r.Get("/{itemType}/{itemId}", controllers.ListOffersForItem(d.Offers, logg))
		})

		r.Route("/v1/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleMerchant, logg))
			r.Get("/ads", controllers.ListOpenAds(d.Listings, logg))
			r.Get("/products", controllers.ListOpenProducts(d.Listings, logg))
			r.Post("/offers/{itemType}/{itemId}/accept", controllers.AcceptItem(d.Offers, logg))
			r.Post("/offers/{itemType}/{itemId}/reject", controllers.RejectItem(d.Offers, logg))
			r.Post("/offers/{itemType}/{itemId}/cancel", controllers.CancelOffer(d.Offers, logg))
			r.Get("/orders", controllers.ListVendorOrders(d.Orders, logg))
			r.Post("/orders/{orderId}/fulfillment", controllers.UpdateFulfillment(d.Orders, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/checkout", controllers.Checkout(d.Orders, logg))
			r.Get("/", controllers.ListBuyerOrders(d.Orders, logg))
			r.Get("/by-gateway/{gatewayOrderId}", controllers.GetOrderByGatewayID(d.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(d.Orders, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		})

		r.Route("/v1/chats", func(r chi.Router) {
			r.Post("/order/{orderId}", controllers.OpenChat(d.Chats, logg))
			r.Get("/", controllers.ListChats(d.Chats, logg))
			r.Get("/{chatId}/messages", controllers.ListChatMessages(d.Chats, logg))
			r.Post("/{chatId}/messages", controllers.SendChatMessage(d.Chats, logg))
		})

		r.Route("/v1/realtime", func(r chi.Router) {
			r.Get("/stream", controllers.StreamEvents(d.Hub, d.Presence, cfg.Realtime, logg))
			r.Post("/rooms/{chatId}/join", controllers.JoinChatRoom(d.Hub, d.Chats, logg))
			r.Post("/rooms/{chatId}/leave", controllers.LeaveChatRoom(d.Hub, d.Chats, logg))
		})

		r.Route("/admin/v1/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Get("/", controllers.AdminListOrders(d.Orders, logg))
			r.Get("/search", controllers.AdminSearchOrders(d.Orders, logg))
			r.Post("/{orderId}/refund", controllers.RefundOrder(d.Orders, logg))
		})
	})

	return r
}
