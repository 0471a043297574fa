package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/citycare/storefront/api/controllers"
	"github.com/citycare/storefront/api/middleware"
	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/metrics"
	pkgredis "github.com/citycare/storefront/pkg/redis"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Devices     middleware.StateResolver
	Static      controllers.StaticCatalog
	Browser     controllers.CatalogBrowser
	LocalStore  controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	HTTPMetrics *metrics.HTTPMetrics
	// Metrics serves the Prometheus exposition; nil leaves /metrics unrouted.
	Metrics http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.LocalStore))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/parents", controllers.StaticParents(deps.Static))
		r.Get("/by-parent/{id}", controllers.StaticByParent(deps.Static))
		r.Get("/service/{id}", controllers.StaticService(deps.Static))
		r.Get("/menus-grouped", controllers.StaticMenus(deps.Static))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/services", func(r chi.Router) {
			r.Get("/parents", controllers.ServiceParents(deps.Browser, logg))
			r.Get("/{id}", controllers.ServiceDetail(deps.Browser, logg))
			r.Get("/{id}/children", controllers.ServiceChildren(deps.Browser, logg))
			r.Get("/{id}/menus", controllers.ServiceMenus(deps.Browser, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Device(deps.Devices, logg),
				middleware.Idempotency(deps.Idempotency, cfg.Redis.IdempotencyTTL, logg),
			)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", controllers.SessionGet(logg))
				r.Post("/otp", controllers.SessionSendOTP(logg))
				r.Post("/login", controllers.SessionLogin(logg))
				r.Post("/logout", controllers.SessionLogout(logg))
				r.Put("/ui", controllers.SessionSetUI(logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(logg))
				r.Post("/", controllers.CartAdd(logg))
				r.Delete("/", controllers.CartClear(logg))
				r.Delete("/error", controllers.CartClearError(logg))
				r.Patch("/items/{key}", controllers.CartUpdateItem(logg))
				r.Delete("/items/{key}", controllers.CartRemoveItem(logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutGet(logg))
				r.Delete("/", controllers.CheckoutReset(logg))
				r.Post("/open", controllers.CheckoutOpen(logg))
				r.Get("/suggestions", controllers.CheckoutSuggestions(logg))
				r.Post("/address", controllers.CheckoutSelectAddress(logg))
				r.Post("/addresses", controllers.CheckoutAddAddress(logg))
				r.Post("/slot-type", controllers.CheckoutSetBookingType(logg))
				r.Post("/date", controllers.CheckoutSelectDate(logg))
				r.Post("/slot", controllers.CheckoutSelectSlot(logg))
				r.Post("/payment-method", controllers.CheckoutSetPaymentMethod(logg))
				r.Post("/tip", controllers.CheckoutSetTip(logg))
				r.Post("/coupon", controllers.CheckoutApplyCoupon(logg))
				r.Delete("/coupon", controllers.CheckoutRemoveCoupon(logg))
				r.Post("/avoid-calling", controllers.CheckoutSetAvoidCalling(logg))
				r.Post("/step", controllers.CheckoutGoTo(logg))
				r.Post("/submit", controllers.CheckoutSubmit(logg))
				r.Post("/payment/callback", controllers.CheckoutPaymentCallback(logg))
				r.Post("/payment/dismiss", controllers.CheckoutPaymentDismiss(logg))
				r.Delete("/error", controllers.CheckoutClearError(logg))
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", controllers.BookingsList(logg))
				r.Get("/reschedule-slots", controllers.BookingsRescheduleSlots(logg))
				r.Get("/{id}", controllers.BookingsDetail(logg))
				r.Get("/{id}/ratings", controllers.BookingsRatings(logg))
				r.Post("/{id}/cancel", controllers.BookingsCancel(logg))
				r.Post("/{id}/reschedule", controllers.BookingsReschedule(logg))
				r.Post("/{id}/rate", controllers.BookingsRate(logg))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", controllers.WalletGet(logg))
				r.Post("/topup", controllers.WalletTopup(logg))
				r.Post("/topup/callback", controllers.WalletTopupCallback(logg))
				r.Post("/topup/failed", controllers.WalletTopupFailed(logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressesList(logg))
				r.Post("/", controllers.AddressesCreate(logg))
				r.Get("/default", controllers.AddressesDefault(logg))
				r.Post("/locate", controllers.AddressesLocate(logg))
				r.Put("/{id}", controllers.AddressesUpdate(logg))
				r.Delete("/{id}", controllers.AddressesDelete(logg))
				r.Post("/{id}/default", controllers.AddressesSetDefault(logg))
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(logg))
				r.Put("/", controllers.ProfileUpdate(logg))
				r.Post("/email/otp", controllers.ProfileSendEmailOTP(logg))
				r.Post("/email/verify", controllers.ProfileVerifyEmail(logg))
				r.Post("/referral", controllers.ProfileApplyReferral(logg))
				r.Delete("/error", controllers.ProfileClearError(logg))
			})
		})
	})

	return r
}
