package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agriconnect/internal/middleware"
	"agriconnect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func registrationForm() url.Values {
	form := url.Values{}
	form.Set("username", "consumer_alice")
	form.Set("email", "alice@example.com")
	form.Set("full_name", "Alice Brown")
	form.Set("phone", "+1-555-0103")
	form.Set("role", model.RoleConsumer)
	form.Set("address", "12 Market Lane")
	form.Set("password", "password123")
	form.Set("confirm_password", "password123")
	return form
}

func TestAccountHandler_Register(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("GET renders the form", func(t *testing.T) {
		handler := NewAccountHandler(new(MockAccountService), testRenderer(t), 24*time.Hour, logger)

		req := httptest.NewRequest(http.MethodGet, "/register", nil)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "confirm_password")
	})

	t.Run("valid submission redirects to login", func(t *testing.T) {
		mockAccounts := new(MockAccountService)
		mockAccounts.On("Register", mock.Anything, mock.MatchedBy(func(req *model.RegisterRequest) bool {
			return req.Username == "consumer_alice" && req.Role == model.RoleConsumer
		})).Return(&model.User{ID: uuid.New(), Username: "consumer_alice", Role: model.RoleConsumer}, nil)

		handler := NewAccountHandler(mockAccounts, testRenderer(t), 24*time.Hour, logger)

		w := httptest.NewRecorder()
		handler.Register(w, formRequest("/register", registrationForm()))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		mockAccounts.AssertExpectations(t)
	})

	t.Run("duplicate username re-renders with the error and echoed fields", func(t *testing.T) {
		mockAccounts := new(MockAccountService)
		mockAccounts.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).
			Return(nil, model.ErrUsernameTaken)

		handler := NewAccountHandler(mockAccounts, testRenderer(t), 24*time.Hour, logger)

		w := httptest.NewRecorder()
		handler.Register(w, formRequest("/register", registrationForm()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Username already exists")
		assert.Contains(t, w.Body.String(), "consumer_alice")
		assert.Contains(t, w.Body.String(), "alice@example.com")
		mockAccounts.AssertExpectations(t)
	})
}

func TestAccountHandler_Login(t *testing.T) {
	logger := zerolog.Nop()

	loginValues := func() url.Values {
		form := url.Values{}
		form.Set("username", "farmer_john")
		form.Set("password", "password123")
		return form
	}

	t.Run("farmer lands on the dashboard with a session cookie", func(t *testing.T) {
		mockAccounts := new(MockAccountService)
		mockAccounts.On("Login", mock.Anything, "farmer_john", "password123").
			Return(&model.User{ID: uuid.New(), Username: "farmer_john", FullName: "John Smith", Role: model.RoleFarmer}, "signed-token", nil)

		handler := NewAccountHandler(mockAccounts, testRenderer(t), 24*time.Hour, logger)

		w := httptest.NewRecorder()
		handler.Login(w, formRequest("/login", loginValues()))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/farmer/dashboard", w.Header().Get("Location"))

		session := sessionCookie(t, w.Result().Cookies())
		assert.Equal(t, "signed-token", session.Value)
		assert.True(t, session.HttpOnly)
		assert.Equal(t, int((24 * time.Hour).Seconds()), session.MaxAge)
		mockAccounts.AssertExpectations(t)
	})

	t.Run("consumer lands on the home page", func(t *testing.T) {
		mockAccounts := new(MockAccountService)
		mockAccounts.On("Login", mock.Anything, "farmer_john", "password123").
			Return(&model.User{ID: uuid.New(), Username: "farmer_john", FullName: "John Smith", Role: model.RoleConsumer}, "signed-token", nil)

		handler := NewAccountHandler(mockAccounts, testRenderer(t), 24*time.Hour, logger)

		w := httptest.NewRecorder()
		handler.Login(w, formRequest("/login", loginValues()))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("bad credentials re-render the form without a cookie", func(t *testing.T) {
		mockAccounts := new(MockAccountService)
		mockAccounts.On("Login", mock.Anything, "farmer_john", "password123").
			Return(nil, "", model.ErrInvalidCredentials)

		handler := NewAccountHandler(mockAccounts, testRenderer(t), 24*time.Hour, logger)

		w := httptest.NewRecorder()
		handler.Login(w, formRequest("/login", loginValues()))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
		for _, cookie := range w.Result().Cookies() {
			assert.NotEqual(t, middleware.SessionCookie, cookie.Name)
		}
	})
}

func TestAccountHandler_Logout(t *testing.T) {
	logger := zerolog.Nop()

	handler := NewAccountHandler(new(MockAccountService), testRenderer(t), 24*time.Hour, logger)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req = withIdentity(req, model.RoleConsumer, uuid.New())
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	session := sessionCookie(t, w.Result().Cookies())
	assert.Empty(t, session.Value)
	assert.Equal(t, -1, session.MaxAge)
}

func sessionCookie(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, cookie := range cookies {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
