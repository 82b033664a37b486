package api

import (
	"net/http"

	"keranjang/internal/logger"
	"keranjang/internal/middleware"

	"github.com/gorilla/mux"
)

// NewRouter wires the cart surface. Middleware order matters: the request id
// must exist before logging, and auth must run before the rate limiter so
// authenticated users get per-user buckets.
func NewRouter(h *Handler, secret []byte) *mux.Router {
	router := mux.NewRouter()

	router.Use(logger.RequestIDMiddleware)
	router.Use(logger.LoggingMiddleware)
	router.Use(middleware.AuthMiddleware(secret))
	router.Use(middleware.RateLimitMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Cart store operations
	router.HandleFunc("/cart", h.GetCart).Methods("GET")
	router.HandleFunc("/cart", h.ClearCart).Methods("DELETE")
	router.HandleFunc("/cart/items", h.AddItem).Methods("POST")
	router.HandleFunc("/cart/items/{id}", h.UpdateQuantity).Methods("PUT")
	router.HandleFunc("/cart/items/{id}", h.RemoveItem).Methods("DELETE")
	router.HandleFunc("/cart/items/{id}/validity", h.SetValidity).Methods("POST")

	// Remote merge policy
	router.HandleFunc("/cart/merge", h.GetMerge).Methods("GET")
	router.HandleFunc("/cart/merge", h.BeginMerge).Methods("POST")
	router.HandleFunc("/cart/merge", h.CancelMerge).Methods("DELETE")
	router.HandleFunc("/cart/merge/resolve", h.ResolveMerge).Methods("POST")

	return router
}
