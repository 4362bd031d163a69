package handler

import (
	"context"
	"encoding/json"
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
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeSuccess writes the standard success envelope, merging any extra keys.
func writeSuccess(w http.ResponseWriter, message string, extra map[string]interface{}) {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeFailure writes the standard failure envelope.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeDomainError maps a service error onto the failure envelope. Domain
// errors surface their own message; anything else stays generic.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeFailure(w, statusForCode(domainErr.Code), domainErr.Message)
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeFailure(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// statusForCode maps domain error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeAlreadyResolved:
		return http.StatusConflict
	case model.ErrCodeValidation, model.ErrCodeQuantityUnavailable:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requireRoleJSON enforces an authenticated identity with the given role on
// a JSON endpoint. Reports whether the request may proceed.
func requireRoleJSON(w http.ResponseWriter, r *http.Request, role string) (auth.Identity, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Please log in to continue")
		return auth.Identity{}, false
	}
	if identity.Role != role {
		writeFailure(w, http.StatusForbidden, roleDeniedMessage(role))
		return auth.Identity{}, false
	}
	return identity, true
}

// requireIdentityPage enforces a logged-in identity on a page route,
// redirecting to the login screen otherwise. When role is non-empty the
// identity must also hold that role.
func requireIdentityPage(w http.ResponseWriter, r *http.Request, role string) (auth.Identity, bool) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		web.SetFlash(w, "info", "Please log in to continue")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return auth.Identity{}, false
	}
	if role != "" && identity.Role != role {
		web.SetFlash(w, "error", roleDeniedMessage(role))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return auth.Identity{}, false
	}
	return identity, true
}

func roleDeniedMessage(role string) string {
	if role == model.RoleFarmer {
		return "Only farmers can do that"
	}
	return "Only consumers can do that"
}

// basePage assembles the envelope every rendered page shares: identity,
// pending flash notice, and the consumer's cart badge count.
func basePage(w http.ResponseWriter, r *http.Request, title string, carts service.CartService, data interface{}) *web.Page {
	page := &web.Page{
		Title: title,
		Flash: web.PopFlash(w, r),
		Data:  data,
	}
	if identity, ok := auth.FromContext(r.Context()); ok {
		page.Identity = &identity
		if identity.Role == model.RoleConsumer && carts != nil {
			if count, err := carts.Count(r.Context(), identity.UserID); err == nil {
				page.CartCount = count
			}
		}
	}
	return page
}

// decodeBody fills dst from the request, accepting both JSON and HTML form
// encodings so the endpoints serve fetch calls and plain form posts alike.
func decodeBody(r *http.Request, dst map[string]*string) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw := make(map[string]json.RawMessage)
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return err
		}
		for name, field := range dst {
			value, ok := raw[name]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				// Numbers arrive unquoted from JSON clients.
				*field = strings.Trim(string(value), `"`)
				continue
			}
			*field = s
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return err
	}
	for name, field := range dst {
		if value := r.PostFormValue(name); value != "" {
			*field = value
		}
	}
	return nil
}

// queryPage reads the page query parameter, defaulting to 1.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// nameResolver memoises product display names for listing rows; removed
// listings show a placeholder rather than breaking the page.
func nameResolver(ctx context.Context, catalog service.CatalogService) func(uuid.UUID) string {
	cache := make(map[uuid.UUID]string)
	return func(id uuid.UUID) string {
		if name, ok := cache[id]; ok {
			return name
		}
		name := "(removed listing)"
		if product, err := catalog.GetByID(ctx, id); err == nil && product != nil {
			name = product.Name
		}
		cache[id] = name
		return name
	}
}
