package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cartcontroller "cartwright/internal/cart/controller"
	checkoutcontroller "cartwright/internal/checkout/controller"
)

func NewRouter(
	cartCtrl *cartcontroller.CartController,
	checkoutCtrl *checkoutcontroller.CheckoutController,
	healthCtrl *HealthController,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartCtrl.Get)
			r.Post("/", cartCtrl.Add)
			r.Patch("/", cartCtrl.Patch)
			r.Put("/", cartCtrl.Put)
			r.Delete("/", cartCtrl.Delete)
		})
		r.Post("/checkout-session", checkoutCtrl.CreateSession)
	})

	r.Get("/healthz", healthCtrl.Healthz)

	return r
}
