package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"agriconnect/internal/auth"
	"agriconnect/internal/model"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles the cart page and cart mutation endpoints.
type CartHandler struct {
	carts    service.CartService
	renderer *web.Renderer
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, renderer *web.Renderer, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		renderer: renderer,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// cartData is the cart page data.
type cartData struct {
	Cart *model.CartView
}

// View handles GET /cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, model.RoleConsumer)
	if !ok {
		return
	}

	cart, err := h.carts.View(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("consumer_id", identity.UserID.String()).Msg("failed to load cart")
		h.renderer.RenderError(w, http.StatusInternalServerError, &identity)
		return
	}

	h.renderer.Render(w, http.StatusOK, "cart", basePage(w, r, "My Cart", h.carts, &cartData{Cart: cart}))
}

// Add handles POST /add_to_cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := requireRoleJSON(w, r, model.RoleConsumer)
	if !ok {
		return
	}

	var rawProductID, rawQuantity string
	if err := decodeBody(r, map[string]*string{
		"product_id": &rawProductID,
		"quantity":   &rawQuantity,
	}); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Please enter a valid quantity")
		return
	}

	count, err := h.carts.Add(r.Context(), identity.UserID, productID, quantity)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeSuccess(w, "Added to cart", map[string]interface{}{"cart_count": count})
}

// Update handles POST /update_cart_item.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := requireRoleJSON(w, r, model.RoleConsumer)
	if !ok {
		return
	}

	var rawItemID, rawQuantity string
	if err := decodeBody(r, map[string]*string{
		"item_id":  &rawItemID,
		"quantity": &rawQuantity,
	}); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid cart item ID")
		return
	}
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Please enter a valid quantity")
		return
	}

	if err := h.carts.Update(r.Context(), itemID, identity.UserID, quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	message := "Cart updated"
	if quantity <= 0 {
		message = "Item removed from cart"
	}
	writeSuccess(w, message, nil)
}

// ToggleSelection handles POST /toggle_cart_item_selection.
func (h *CartHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := requireRoleJSON(w, r, model.RoleConsumer)
	if !ok {
		return
	}

	var rawItemID string
	if err := decodeBody(r, map[string]*string{"item_id": &rawItemID}); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid cart item ID")
		return
	}

	selected, err := h.carts.ToggleSelection(r.Context(), itemID, identity.UserID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeSuccess(w, fmt.Sprintf("Item %s", selectionWord(selected)), map[string]interface{}{"selected": selected})
}

// Count handles GET /api/cart_count. Only consumers have carts; any other
// logged-in role just sees an empty badge rather than an error.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Please log in to continue")
		return
	}
	if identity.Role != model.RoleConsumer {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"cart_count": 0,
		})
		return
	}

	count, err := h.carts.Count(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"cart_count": count,
	})
}

func selectionWord(selected bool) string {
	if selected {
		return "selected"
	}
	return "deselected"
}
