package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"agriconnect/internal/imagestore"
	"agriconnect/internal/model"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	homePerPage = 12
	listPerPage = 20

	// maxImageMemory bounds the in-memory portion of multipart parsing.
	maxImageMemory = 10 << 20
)

// ProductHandler handles catalogue pages and farmer product management.
type ProductHandler struct {
	catalog  service.CatalogService
	carts    service.CartService
	accounts service.AccountService
	images   imagestore.Store
	renderer *web.Renderer
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(
	catalog service.CatalogService,
	carts service.CartService,
	accounts service.AccountService,
	images imagestore.Store,
	renderer *web.Renderer,
	logger zerolog.Logger,
) *ProductHandler {
	return &ProductHandler{
		catalog:  catalog,
		carts:    carts,
		accounts: accounts,
		images:   images,
		renderer: renderer,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// catalogData is the home and browse page data.
type catalogData struct {
	Search   model.ProductSearch
	Products *model.ProductPage
	PrevPage int
	NextPage int
}

// Home handles GET /.
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}

	page, err := h.catalog.Search(r.Context(), model.ProductSearch{Page: 1, PerPage: homePerPage})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load home page")
		h.renderer.RenderError(w, http.StatusInternalServerError, nil)
		return
	}

	h.renderer.Render(w, http.StatusOK, "index", basePage(w, r, "", h.carts, &catalogData{Products: page}))
}

// List handles GET /products with search and filter parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := model.ProductSearch{
		Query:    query.Get("search_query"),
		Category: query.Get("category"),
		Page:     queryPage(r),
		PerPage:  listPerPage,
	}
	if raw := query.Get("min_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			params.MinPrice = &price
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			params.MaxPrice = &price
		}
	}

	page, err := h.catalog.Search(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to search products")
		h.renderer.RenderError(w, http.StatusInternalServerError, nil)
		return
	}

	data := &catalogData{
		Search:   params,
		Products: page,
		PrevPage: page.Page - 1,
		NextPage: page.Page + 1,
	}
	h.renderer.Render(w, http.StatusOK, "products", basePage(w, r, "Browse Products", h.carts, data))
}

// detailData is the product detail page data.
type detailData struct {
	Product    *model.Product
	FarmerName string
}

// Detail handles GET /product/{id}.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r.URL.Path, "/product/")
	if !ok {
		h.NotFound(w, r)
		return
	}

	product, err := h.catalog.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			h.NotFound(w, r)
			return
		}
		h.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to load product")
		h.renderer.RenderError(w, http.StatusInternalServerError, nil)
		return
	}

	farmerName := "Unknown farmer"
	if farmer, err := h.accounts.Profile(r.Context(), product.FarmerID); err == nil {
		farmerName = farmer.FullName
	}

	data := &detailData{Product: product, FarmerName: farmerName}
	h.renderer.Render(w, http.StatusOK, "product_detail", basePage(w, r, product.Name, h.carts, data))
}

// dashboardData is the farmer dashboard page data.
type dashboardData struct {
	Products []model.Product
}

// Dashboard handles GET /farmer/dashboard.
func (h *ProductHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, model.RoleFarmer)
	if !ok {
		return
	}

	products, err := h.catalog.ListByFarmer(r.Context(), identity.UserID, 100)
	if err != nil {
		h.logger.Error().Err(err).Str("farmer_id", identity.UserID.String()).Msg("failed to load dashboard")
		h.renderer.RenderError(w, http.StatusInternalServerError, &identity)
		return
	}

	h.renderer.Render(w, http.StatusOK, "dashboard", basePage(w, r, "My Listings", h.carts, &dashboardData{Products: products}))
}

// productFormData is the add/edit product page data.
type productFormData struct {
	Heading string
	Action  string
	Input   *model.ProductInput
}

// AddProduct handles GET and POST /farmer/add_product.
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, model.RoleFarmer)
	if !ok {
		return
	}

	form := &productFormData{
		Heading: "Add a Product",
		Action:  "/farmer/add_product",
		Input:   &model.ProductInput{Quantity: 1, IsAvailable: true},
	}

	if r.Method == http.MethodGet {
		h.renderer.Render(w, http.StatusOK, "product_form", basePage(w, r, form.Heading, h.carts, form))
		return
	}
	if r.Method != http.MethodPost {
		h.NotFound(w, r)
		return
	}

	input, image, err := parseProductForm(r)
	if err != nil {
		form.Input = input
		page := basePage(w, r, form.Heading, h.carts, form)
		page.Flash = &web.Flash{Category: "error", Message: flashMessage(err)}
		h.renderer.Render(w, http.StatusBadRequest, "product_form", page)
		return
	}

	if _, err := h.catalog.Create(r.Context(), identity.UserID, input, image); err != nil {
		form.Input = input
		page := basePage(w, r, form.Heading, h.carts, form)
		page.Flash = &web.Flash{Category: "error", Message: flashMessage(err)}
		h.renderer.Render(w, http.StatusBadRequest, "product_form", page)
		return
	}

	web.SetFlash(w, "success", "Product added successfully!")
	http.Redirect(w, r, "/farmer/dashboard", http.StatusSeeOther)
}

// EditProduct handles GET and POST /farmer/edit_product/{id}.
func (h *ProductHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentityPage(w, r, model.RoleFarmer)
	if !ok {
		return
	}

	productID, found := pathID(r.URL.Path, "/farmer/edit_product/")
	if !found {
		h.NotFound(w, r)
		return
	}

	form := &productFormData{
		Heading: "Edit Product",
		Action:  "/farmer/edit_product/" + productID.String(),
	}

	if r.Method == http.MethodGet {
		product, err := h.catalog.GetByID(r.Context(), productID)
		if err != nil {
			if errors.Is(err, model.ErrProductNotFound) {
				h.NotFound(w, r)
				return
			}
			h.renderer.RenderError(w, http.StatusInternalServerError, &identity)
			return
		}
		if product.FarmerID != identity.UserID {
			web.SetFlash(w, "error", "Access denied")
			http.Redirect(w, r, "/farmer/dashboard", http.StatusSeeOther)
			return
		}

		form.Input = &model.ProductInput{
			Name:        product.Name,
			Description: product.Description,
			Price:       product.Price,
			Quantity:    product.Quantity,
			Unit:        product.Unit,
			Category:    product.Category,
			IsAvailable: product.IsAvailable,
		}
		h.renderer.Render(w, http.StatusOK, "product_form", basePage(w, r, form.Heading, h.carts, form))
		return
	}
	if r.Method != http.MethodPost {
		h.NotFound(w, r)
		return
	}

	input, image, err := parseProductForm(r)
	if err == nil {
		_, err = h.catalog.Update(r.Context(), productID, identity.UserID, input, image)
	}
	if err != nil {
		form.Input = input
		page := basePage(w, r, form.Heading, h.carts, form)
		page.Flash = &web.Flash{Category: "error", Message: flashMessage(err)}
		h.renderer.Render(w, http.StatusBadRequest, "product_form", page)
		return
	}

	web.SetFlash(w, "success", "Product updated successfully!")
	http.Redirect(w, r, "/farmer/dashboard", http.StatusSeeOther)
}

// DeleteProduct handles POST /farmer/delete_product/{id}, returning JSON.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := requireRoleJSON(w, r, model.RoleFarmer)
	if !ok {
		return
	}

	productID, found := pathID(r.URL.Path, "/farmer/delete_product/")
	if !found {
		writeFailure(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.catalog.Delete(r.Context(), productID, identity.UserID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeSuccess(w, "Product deleted successfully", nil)
}

// ServeImage handles GET /uploads/{filename}.
func (h *ProductHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/uploads/")
	if filename == "" || strings.Contains(filename, "/") {
		http.NotFound(w, r)
		return
	}

	file, err := h.images.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, imagestore.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error().Err(err).Str("filename", filename).Msg("failed to open image")
		http.Error(w, "failed to load image", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Debug().Err(err).Str("filename", filename).Msg("image transfer aborted")
	}
}

// NotFound renders the 404 page.
func (h *ProductHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	page := basePage(w, r, "Page Not Found", nil, nil)
	h.renderer.RenderError(w, http.StatusNotFound, page.Identity)
}

// parseProductForm reads the multipart add/edit product form. The returned
// input echoes back what the farmer typed even when parsing fails.
func parseProductForm(r *http.Request) (*model.ProductInput, *service.ImageUpload, error) {
	input := &model.ProductInput{}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		return input, nil, model.NewValidationError("Invalid form submission")
	}

	input.Name = r.PostFormValue("name")
	input.Description = r.PostFormValue("description")
	input.Unit = r.PostFormValue("unit")
	input.Category = r.PostFormValue("category")
	input.IsAvailable = r.PostFormValue("is_available") != "false"

	price, err := decimal.NewFromString(r.PostFormValue("price"))
	if err != nil {
		return input, nil, model.NewValidationError("Please enter a valid price")
	}
	input.Price = price

	quantity, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		return input, nil, model.NewValidationError("Please enter a valid quantity")
	}
	input.Quantity = quantity

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil, nil
		}
		return input, nil, model.NewValidationError("Invalid image upload")
	}

	return input, &service.ImageUpload{Filename: header.Filename, Data: file}, nil
}

// pathID extracts and parses the uuid path segment after the given prefix.
func pathID(path, prefix string) (uuid.UUID, bool) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
