package http

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *CartHandler, log logger.Logger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(requestLogger(log))

	mux.Get("/healthz", h.HandleHealth)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/cart", h.HandleGetCart)
		r.Post("/cart/items", h.HandleAddProduct)
		r.Delete("/cart/items/{productId}", h.HandleRemoveProduct)
		r.Patch("/cart/items/{productId}", h.HandleUpdateProductAmount)
		r.Get("/stock/{productId}", h.HandleGetStock)
	})

	return mux
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Infof("HTTP %s %s -> %d in %s (request_id=%s)",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
