package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agriconnect/internal/auth"
	"agriconnect/internal/model"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OfferHandler handles offer negotiation endpoints and the offers page.
type OfferHandler struct {
	offers   service.OfferService
	catalog  service.CatalogService
	carts    service.CartService
	renderer *web.Renderer
	logger   zerolog.Logger
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(
	offers service.OfferService,
	catalog service.CatalogService,
	carts service.CartService,
	renderer *web.Renderer,
	logger zerolog.Logger,
) *OfferHandler {
	return &OfferHandler{
		offers:   offers,
		catalog:  catalog,
		carts:    carts,
		renderer: renderer,
		logger:   logger.With().Str("handler", "offer").Logger(),
	}
}

// offerRow pairs an offer with its product's display name.
type offerRow struct {
	Offer       model.Offer
	ProductName string
}

// offersData is the offers page data.
type offersData struct {
	Rows     []offerRow
	Page     *model.OfferPage
	PrevPage int
	NextPage int
}

// List handles GET /offers.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, "")
	if !ok {
		return
	}

	page, err := h.offers.List(r.Context(), identity.UserID, identity.Role, queryPage(r))
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("failed to load offers page")
		h.renderer.RenderError(w, http.StatusInternalServerError, &identity)
		return
	}

	resolve := nameResolver(r.Context(), h.catalog)
	rows := make([]offerRow, 0, len(page.Offers))
	for _, offer := range page.Offers {
		rows = append(rows, offerRow{Offer: offer, ProductName: resolve(offer.ProductID)})
	}

	data := &offersData{
		Rows:     rows,
		Page:     page,
		PrevPage: page.Page - 1,
		NextPage: page.Page + 1,
	}
	h.renderer.Render(w, http.StatusOK, "offers", basePage(w, r, "Offers", h.carts, data))
}

// Send handles POST /send_offer.
func (h *OfferHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := requireRoleJSON(w, r, model.RoleConsumer)
	if !ok {
		return
	}

	var rawProductID, rawQuantity, rawPrice, message string
	if err := decodeBody(r, map[string]*string{
		"product_id":    &rawProductID,
		"quantity":      &rawQuantity,
		"offered_price": &rawPrice,
		"message":       &message,
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
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Please enter a valid price")
		return
	}

	offer, err := h.offers.Send(r.Context(), identity.UserID, &model.SendOfferRequest{
		ProductID:    productID,
		Quantity:     quantity,
		OfferedPrice: price,
		Message:      message,
	})
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeSuccess(w, "Offer sent to the farmer", map[string]interface{}{"offer_id": offer.ID})
}

// Respond handles GET /respond_to_offer/{id}/{accept|reject}. Browser links
// hit this directly, so success routes back to the offers page with a
// flash; fetch callers read the JSON by sending Accept: application/json.
func (h *OfferHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, found := auth.FromContext(r.Context())
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")

	if !found || identity.Role != model.RoleFarmer {
		if wantsJSON {
			requireRoleJSON(w, r, model.RoleFarmer)
			return
		}
		web.SetFlash(w, "error", "Only farmers can respond to offers")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/respond_to_offer/")
	rawID, action, ok := strings.Cut(rest, "/")
	if !ok {
		h.respondResult(w, r, wantsJSON, http.StatusBadRequest, false, "Invalid offer response", false)
		return
	}
	offerID, err := uuid.Parse(rawID)
	if err != nil {
		h.respondResult(w, r, wantsJSON, http.StatusBadRequest, false, "Invalid offer ID", false)
		return
	}

	offer, err := h.offers.Respond(r.Context(), offerID, identity.UserID, action)
	if err != nil {
		var domainErr *model.DomainError
		status := http.StatusInternalServerError
		message := "Something went wrong. Please try again."
		if errors.As(err, &domainErr) {
			status = statusForCode(domainErr.Code)
			message = domainErr.Message
		} else {
			h.logger.Error().Err(err).Str("offer_id", offerID.String()).Msg("failed to respond to offer")
		}
		h.respondResult(w, r, wantsJSON, status, false, message, false)
		return
	}

	if offer.Status == model.OfferStatusAccepted {
		h.respondResult(w, r, wantsJSON, http.StatusOK, true, "Offer accepted and order created", true)
		return
	}
	h.respondResult(w, r, wantsJSON, http.StatusOK, true, "Offer rejected", false)
}

// respondResult reports the respond outcome either as the JSON envelope or
// as a flash-and-redirect back to the offers page.
func (h *OfferHandler) respondResult(w http.ResponseWriter, r *http.Request, wantsJSON bool, status int, success bool, message string, orderCreated bool) {
	if wantsJSON {
		writeJSON(w, status, map[string]interface{}{
			"success":       success,
			"message":       message,
			"order_created": orderCreated,
		})
		return
	}

	category := "error"
	if success {
		category = "success"
	}
	web.SetFlash(w, category, message)
	http.Redirect(w, r, "/offers", http.StatusSeeOther)
}
