package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ermiasgashu/suq-backend/api/controllers"
	"github.com/ermiasgashu/suq-backend/api/middleware"
	cartsvc "github.com/ermiasgashu/suq-backend/internal/cart"
	checkoutsvc "github.com/ermiasgashu/suq-backend/internal/checkout"
	orderssvc "github.com/ermiasgashu/suq-backend/internal/orders"
	reportssvc "github.com/ermiasgashu/suq-backend/internal/reports"
	"github.com/ermiasgashu/suq-backend/pkg/config"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	"github.com/ermiasgashu/suq-backend/pkg/logger"
	"github.com/ermiasgashu/suq-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orderssvc.Service
	Reports  reportssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.NamedPinger{Name: "db", Pinger: deps.DB},
			controllers.NamedPinger{Name: "redis", Pinger: deps.Redis},
		))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleCustomer), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.Cart, logg))
				r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
				r.Patch("/items/{productId}", controllers.UpdateCartItem(deps.Cart, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.Cart, logg))
				r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.GetCheckout(deps.Checkout, logg))
				r.Post("/", controllers.StartCheckout(deps.Checkout, logg))
				r.Post("/shipping", controllers.SubmitShipping(deps.Checkout, logg))
				r.Post("/payment", controllers.SubmitPayment(deps.Checkout, logg))
				r.Post("/back", controllers.CheckoutBack(deps.Checkout, logg))
				r.Post("/confirm", controllers.ConfirmCheckout(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
			})
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleVendor), logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListVendorOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/status", controllers.VendorAdvanceStatus(deps.Orders, logg))
			})
			r.Get("/reports/commission", controllers.VendorCommissionReport(deps.Reports, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminAdvanceStatus(deps.Orders, logg))
				r.Post("/{orderId}/payment", controllers.AdminMarkPayment(deps.Orders, logg))
			})
			r.Get("/reports/commission", controllers.AdminCommissionReport(deps.Reports, logg))
		})
	})

	return r
}
