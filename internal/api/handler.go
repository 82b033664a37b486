package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"keranjang/internal/cart"
	"keranjang/internal/remote"

	"github.com/gorilla/mux"
)

// Handler is the thin presentation surface over the cart store. It only
// validates input shapes at the boundary; the store itself never sees
// type-invalid values.
type Handler struct {
	store    cart.Store
	resolver *remote.Resolver
}

func NewHandler(store cart.Store, resolver *remote.Resolver) *Handler {
	return &Handler{store: store, resolver: resolver}
}

type cartResponse struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   int64           `json:"subtotal"`
}

// GetCart returns the current cart with its derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items := h.store.Items()
	if items == nil {
		items = []cart.LineItem{}
	}

	writeJSON(w, http.StatusOK, cartResponse{
		Items:      items,
		TotalItems: h.store.TotalItems(),
		Subtotal:   h.store.Subtotal(),
	})
}

// AddItem adds one unit of the posted product.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var candidate cart.Candidate
	if err := decodeJSON(r.Body, &candidate); err != nil {
		writeError(w, "invalid item payload", http.StatusBadRequest)
		return
	}
	if candidate.ID == "" {
		writeError(w, "item id is required", http.StatusBadRequest)
		return
	}
	if candidate.Price < 0 {
		writeError(w, "item price must not be negative", http.StatusBadRequest)
		return
	}

	h.store.AddItem(candidate)
	writeJSON(w, http.StatusCreated, map[string]int{"total_items": h.store.TotalItems()})
}

type updateQuantityInput struct {
	Quantity *int `json:"quantity"`
}

// UpdateQuantity sets the quantity of one line item. A quantity below 1
// removes the line.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input updateQuantityInput
	if err := decodeJSON(r.Body, &input); err != nil || input.Quantity == nil {
		// Fractional or missing quantities never reach the store.
		writeError(w, "quantity must be an integer", http.StatusBadRequest)
		return
	}

	h.store.UpdateQuantity(id, *input.Quantity)
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem deletes one line item; removing an absent item succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveItem(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type validityInput struct {
	Availability cart.Availability `json:"availability"`
	Stock        cart.StockLevel   `json:"stock"`
	MaxQuantity  int               `json:"max_quantity"`
}

// SetValidity records the stock validator's verdict on a line item.
func (h *Handler) SetValidity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input validityInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeError(w, "invalid validity payload", http.StatusBadRequest)
		return
	}

	switch input.Availability {
	case cart.AvailabilityUnknown, cart.AvailabilityAvailable, cart.AvailabilityUnavailable:
	default:
		writeError(w, "unknown availability", http.StatusBadRequest)
		return
	}
	switch input.Stock {
	case cart.StockUnknown, cart.StockSufficient, cart.StockLimited:
	default:
		writeError(w, "unknown stock level", http.StatusBadRequest)
		return
	}

	h.store.SetValidity(id, cart.Validity{
		Availability: input.Availability,
		Stock:        input.Stock,
		MaxQuantity:  input.MaxQuantity,
	})
	w.WriteHeader(http.StatusNoContent)
}

// BeginMerge runs the post-login comparison against the server-side cart.
func (h *Handler) BeginMerge(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.resolver.Begin(r.Context())
	if err != nil {
		if errors.Is(err, remote.ErrComparisonPending) {
			writeJSON(w, http.StatusConflict, cmp)
			return
		}
		// Cancellation: the client went away, the response is moot.
		writeError(w, "comparison aborted", http.StatusRequestTimeout)
		return
	}

	writeJSON(w, http.StatusOK, cmp)
}

// GetMerge reports the pending comparison, for re-rendering the prompt.
func (h *Handler) GetMerge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.Pending())
}

type resolveInput struct {
	Choice remote.Choice `json:"choice"`
}

// ResolveMerge applies the user's keep_local / load_backend verdict.
func (h *Handler) ResolveMerge(w http.ResponseWriter, r *http.Request) {
	var input resolveInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeError(w, "invalid choice payload", http.StatusBadRequest)
		return
	}

	if err := h.resolver.Resolve(r.Context(), input.Choice); err != nil {
		switch {
		case errors.Is(err, remote.ErrNoPendingChoice):
			writeError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, remote.ErrUnknownChoice):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			writeError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, h.resolver.Pending())
}

// CancelMerge dismisses the prompt; neither cart is applied.
func (h *Handler) CancelMerge(w http.ResponseWriter, r *http.Request) {
	h.resolver.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}
