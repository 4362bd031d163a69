package router

import (
	"net/http"

	"agriconnect/internal/auth"
	"agriconnect/internal/handler"
	"agriconnect/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	accountHandler *handler.AccountHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	offerHandler *handler.OfferHandler,
	orderHandler *handler.OrderHandler,
	tokens *auth.Tokens,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Pages. The root handler doubles as the 404 catch-all for unknown paths.
	mux.HandleFunc("/", productHandler.Home)
	mux.HandleFunc("/products", productHandler.List)
	mux.HandleFunc("/product/", productHandler.Detail)
	mux.HandleFunc("/register", accountHandler.Register)
	mux.HandleFunc("/login", accountHandler.Login)
	mux.HandleFunc("/logout", accountHandler.Logout)
	mux.HandleFunc("/cart", cartHandler.View)
	mux.HandleFunc("/offers", offerHandler.List)
	mux.HandleFunc("/orders", orderHandler.List)

	// Farmer product management
	mux.HandleFunc("/farmer/dashboard", productHandler.Dashboard)
	mux.HandleFunc("/farmer/add_product", productHandler.AddProduct)
	mux.HandleFunc("/farmer/edit_product/", productHandler.EditProduct)
	mux.HandleFunc("/farmer/delete_product/", productHandler.DeleteProduct)

	// Cart and negotiation endpoints
	mux.HandleFunc("/add_to_cart", cartHandler.Add)
	mux.HandleFunc("/update_cart_item", cartHandler.Update)
	mux.HandleFunc("/toggle_cart_item_selection", cartHandler.ToggleSelection)
	mux.HandleFunc("/send_offer", offerHandler.Send)
	mux.HandleFunc("/respond_to_offer/", offerHandler.Respond)
	mux.HandleFunc("/api/cart_count", cartHandler.Count)

	// Uploaded product images
	mux.HandleFunc("/uploads/", productHandler.ServeImage)

	// Apply middleware in order: Recovery -> Logging -> CORS -> Authenticate
	var h http.Handler = mux
	h = middleware.Authenticate(tokens, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
