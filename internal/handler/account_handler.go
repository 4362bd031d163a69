package handler

import (
	"errors"
	"net/http"
	"time"

	"agriconnect/internal/middleware"
	"agriconnect/internal/model"
	"agriconnect/internal/service"
	"agriconnect/internal/web"

	"github.com/rs/zerolog"
)

// AccountHandler handles registration, login, and logout.
type AccountHandler struct {
	accounts    service.AccountService
	renderer    *web.Renderer
	tokenExpiry time.Duration
	logger      zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts service.AccountService, renderer *web.Renderer, tokenExpiry time.Duration, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:    accounts,
		renderer:    renderer,
		tokenExpiry: tokenExpiry,
		logger:      logger.With().Str("handler", "account").Logger(),
	}
}

// registerForm is the registration page data, echoed back on errors.
type registerForm struct {
	Username string
	Email    string
	FullName string
	Phone    string
	Address  string
}

// Register handles GET and POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderer.Render(w, http.StatusOK, "register", basePage(w, r, "Register", nil, &registerForm{}))
		return
	}
	if r.Method != http.MethodPost {
		h.renderer.RenderError(w, http.StatusNotFound, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		web.SetFlash(w, "error", "Invalid form submission")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	req := &model.RegisterRequest{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		FullName:        r.PostFormValue("full_name"),
		Phone:           r.PostFormValue("phone"),
		Role:            r.PostFormValue("role"),
		Address:         r.PostFormValue("address"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	if _, err := h.accounts.Register(r.Context(), req); err != nil {
		form := &registerForm{
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
			Phone:    req.Phone,
			Address:  req.Address,
		}
		page := basePage(w, r, "Register", nil, form)
		page.Flash = &web.Flash{Category: "error", Message: flashMessage(err)}
		h.renderer.Render(w, http.StatusBadRequest, "register", page)
		return
	}

	web.SetFlash(w, "success", "Registration successful! Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// loginForm is the login page data.
type loginForm struct {
	Username string
}

// Login handles GET and POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderer.Render(w, http.StatusOK, "login", basePage(w, r, "Log in", nil, &loginForm{}))
		return
	}
	if r.Method != http.MethodPost {
		h.renderer.RenderError(w, http.StatusNotFound, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		web.SetFlash(w, "error", "Invalid form submission")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	username := r.PostFormValue("username")
	user, token, err := h.accounts.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		page := basePage(w, r, "Log in", nil, &loginForm{Username: username})
		page.Flash = &web.Flash{Category: "error", Message: flashMessage(err)}
		h.renderer.Render(w, http.StatusUnauthorized, "login", page)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenExpiry.Seconds()),
	})

	web.SetFlash(w, "success", "Welcome back, "+user.FullName+"!")
	if user.Role == model.RoleFarmer {
		http.Redirect(w, r, "/farmer/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles GET /logout by clearing the session cookie.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	web.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// flashMessage extracts a user-facing message from a service error.
func flashMessage(err error) string {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Something went wrong. Please try again."
}
