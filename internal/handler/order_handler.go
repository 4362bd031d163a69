package handler

import (
	"net/http"

	"agriconnect/internal/model"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/rs/zerolog"
)

// OrderHandler handles the orders page.
type OrderHandler struct {
	orders   service.OrderService
	catalog  service.CatalogService
	carts    service.CartService
	renderer *web.Renderer
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(
	orders service.OrderService,
	catalog service.CatalogService,
	carts service.CartService,
	renderer *web.Renderer,
	logger zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		catalog:  catalog,
		carts:    carts,
		renderer: renderer,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// orderRow pairs an order with its product's display name.
type orderRow struct {
	Order       model.Order
	ProductName string
}

// ordersData is the orders page data.
type ordersData struct {
	Rows     []orderRow
	Page     *model.OrderPage
	PrevPage int
	NextPage int
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, "")
	if !ok {
		return
	}

	page, err := h.orders.List(r.Context(), identity.UserID, identity.Role, queryPage(r))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("failed to load orders page")
		h.renderer.RenderError(w, http.StatusInternalServerError, &identity)
		return
	}

	resolve := nameResolver(r.Context(), h.catalog)
	rows := make([]orderRow, 0, len(page.Orders))
	for _, order := range page.Orders {
		rows = append(rows, orderRow{Order: order, ProductName: resolve(order.ProductID)})
	}

	data := &ordersData{
		Rows:     rows,
		Page:     page,
		PrevPage: page.Page - 1,
		NextPage: page.Page + 1,
	}
	h.renderer.Render(w, http.StatusOK, "orders", basePage(w, r, "My Orders", h.carts, data))
}
