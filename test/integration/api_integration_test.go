package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agriconnect/internal/auth"
	"agriconnect/internal/handler"
	"agriconnect/internal/imagestore"
	"agriconnect/internal/middleware"
	"agriconnect/internal/model"
	"agriconnect/internal/repository"
	"agriconnect/internal/router"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	offerRepo := repository.NewOfferRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	images, err := imagestore.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	tokens := auth.NewTokens(auth.TokenConfig{SigningKey: "integration-test-key", Expiry: time.Hour})

	accountService := service.NewAccountService(userRepo, tokens, logger)
	catalogService := service.NewCatalogService(productRepo, images, logger)
	cartService := service.NewCartService(cartRepo, productRepo, nil, logger)
	offerService := service.NewOfferService(offerRepo, orderRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, logger)

	renderer, err := web.NewRenderer(logger)
	require.NoError(t, err)

	accountHandler := handler.NewAccountHandler(accountService, renderer, time.Hour, logger)
	productHandler := handler.NewProductHandler(catalogService, cartService, accountService, images, renderer, logger)
	cartHandler := handler.NewCartHandler(cartService, renderer, logger)
	offerHandler := handler.NewOfferHandler(offerService, catalogService, cartService, renderer, logger)
	orderHandler := handler.NewOrderHandler(orderService, catalogService, cartService, renderer, logger)

	return router.New(accountHandler, productHandler, cartHandler, offerHandler, orderHandler, tokens, logger)
}

// registerAndLogin creates an account through the registration endpoint and
// logs in, returning the session cookie.
func registerAndLogin(t *testing.T, server http.Handler, username, role string) *http.Cookie {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("email", username+"@example.com")
	form.Set("full_name", "Test "+username)
	form.Set("role", role)
	form.Set("password", "password123")
	form.Set("confirm_password", "password123")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code, "registration failed: %s", w.Body.String())

	login := url.Values{}
	login.Set("username", username)
	login.Set("password", "password123")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(login.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code, "login failed: %s", w.Body.String())

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// addProduct submits the add-product form as the farmer and returns the new
// product's id, looked up by name.
func addProduct(t *testing.T, server http.Handler, testDB *TestDB, session *http.Cookie, name, price, quantity string) uuid.UUID {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("name", name))
	require.NoError(t, form.WriteField("description", "Grown without pesticides"))
	require.NoError(t, form.WriteField("price", price))
	require.NoError(t, form.WriteField("quantity", quantity))
	require.NoError(t, form.WriteField("unit", "kg"))
	require.NoError(t, form.WriteField("category", "Vegetables"))
	require.NoError(t, form.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/farmer/add_product", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(session)
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code, "add product failed: %s", w.Body.String())

	var id uuid.UUID
	err := testDB.Pool.QueryRow(context.Background(),
		"SELECT id FROM products WHERE name = $1", name).Scan(&id)
	require.NoError(t, err)
	return id
}

func postJSON(server http.Handler, session *http.Cookie, target string, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}

func TestCartFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	farmer := registerAndLogin(t, server, "farmer_john", model.RoleFarmer)
	consumer := registerAndLogin(t, server, "consumer_alice", model.RoleConsumer)
	productID := addProduct(t, server, testDB, farmer, "Fresh Tomatoes", "3.50", "10")

	// First add creates the cart item.
	w := postJSON(server, consumer, "/add_to_cart", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   "5",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(1), response["cart_count"])

	// A second add accumulates, clamped to the available stock.
	w = postJSON(server, consumer, "/add_to_cart", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   "8",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quantity int
	err := testDB.Pool.QueryRow(context.Background(),
		"SELECT quantity FROM cart_items WHERE product_id = $1", productID).Scan(&quantity)
	require.NoError(t, err)
	assert.Equal(t, 10, quantity)

	// A fresh request beyond stock is rejected outright.
	w = postJSON(server, consumer, "/update_cart_item", map[string]interface{}{
		"item_id":  cartItemID(t, testDB, productID).String(),
		"quantity": "25",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Only 10 kg available", response["message"])

	// Anonymous visitors cannot touch carts.
	w = postJSON(server, nil, "/add_to_cart", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   "1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Farmers cannot either.
	w = postJSON(server, farmer, "/add_to_cart", map[string]interface{}{
		"product_id": productID.String(),
		"quantity":   "1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOfferFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	farmer := registerAndLogin(t, server, "farmer_john", model.RoleFarmer)
	consumer := registerAndLogin(t, server, "consumer_alice", model.RoleConsumer)
	productID := addProduct(t, server, testDB, farmer, "Fresh Tomatoes", "3.50", "500")

	// Consumer proposes a lower price.
	w := postJSON(server, consumer, "/send_offer", map[string]interface{}{
		"product_id":    productID.String(),
		"quantity":      "20",
		"offered_price": "3.00",
		"message":       "Bulk order for my restaurant",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	offerID := response["offer_id"].(string)

	// Farmer accepts; the order is created in the same stroke.
	respond := func(session *http.Cookie, action string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/respond_to_offer/"+offerID+"/"+action, nil)
		req.Header.Set("Accept", "application/json")
		req.AddCookie(session)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		return w
	}

	w = respond(farmer, "accept")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, true, response["order_created"])

	// The order carries the negotiated price.
	var total string
	err := testDB.Pool.QueryRow(context.Background(),
		"SELECT total_amount::text FROM orders WHERE offer_id = $1", offerID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, "60.00", total)

	// Responding a second time conflicts.
	w = respond(farmer, "reject")
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different farmer cannot respond to someone else's offer.
	stranger := registerAndLogin(t, server, "farmer_mary", model.RoleFarmer)
	w = respond(stranger, "accept")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The sale does not pin the listing: the farmer can still delete it,
	// and the order survives the removal.
	req := httptest.NewRequest(http.MethodPost, "/farmer/delete_product/"+productID.String(), nil)
	req.AddCookie(farmer)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])

	var orderCount int
	err = testDB.Pool.QueryRow(context.Background(),
		"SELECT count(*) FROM orders WHERE product_id = $1", productID).Scan(&orderCount)
	require.NoError(t, err)
	assert.Equal(t, 1, orderCount)
}

func cartItemID(t *testing.T, testDB *TestDB, productID uuid.UUID) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := testDB.Pool.QueryRow(context.Background(),
		"SELECT id FROM cart_items WHERE product_id = $1", productID).Scan(&id)
	require.NoError(t, err)
	return id
}
