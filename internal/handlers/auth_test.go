package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetshop/apiserver/types"
)

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "customer@sweetshop.com",
		Password: "user123",
	})
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	req := RegisterRequest{Email: "customer@sweetshop.com", Password: "user123"}
	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/auth/register", "", req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "email already registered", decodeBody[ErrorResponse](t, recorder).Error)
}

func TestRegister_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	cases := []RegisterRequest{
		{Email: "", Password: "user123"},
		{Email: "customer@sweetshop.com", Password: ""},
	}
	for _, req := range cases {
		recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "root@sweetshop.com",
		Password: "root",
		Role:     "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "admin@sweetshop.com",
		Password: "admin123",
		Role:     types.RoleAdmin,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "admin@sweetshop.com",
		Password: "admin123",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	resp := decodeBody[AuthResponse](t, recorder)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, types.RoleAdmin, resp.Role)
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "customer@sweetshop.com",
		Password: "user123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	// Wrong password and unknown identity fail alike.
	recorder = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "customer@sweetshop.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "nobody@sweetshop.com",
		Password: "user123",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/sweets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "missing authorization", decodeBody[ErrorResponse](t, recorder).Error)
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	router := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/sweets", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "invalid token", decodeBody[ErrorResponse](t, recorder).Error)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	router := newTestRouter(t)

	token, err := issueToken("customer@sweetshop.com", types.RoleCustomer, []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	recorder := doJSON(t, router, http.MethodGet, "/sweets", token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "invalid token", decodeBody[ErrorResponse](t, recorder).Error)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	router := newTestRouter(t)

	token, err := issueToken("customer@sweetshop.com", types.RoleCustomer, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	recorder := doJSON(t, router, http.MethodGet, "/sweets", token, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireAdmin_CustomerForbidden(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "customer@sweetshop.com", "user123", "")

	adminOnly := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/sweets", SweetCreateRequest{Name: "x", Category: "y", Price: 1}},
		{http.MethodPut, "/sweets/1", SweetUpdateRequest{}},
		{http.MethodDelete, "/sweets/1", nil},
		{http.MethodPost, "/sweets/1/restock", RestockRequest{Amount: 1}},
	}
	for _, route := range adminOnly {
		recorder := doJSON(t, router, route.method, route.path, token, route.body)
		assert.Equal(t, http.StatusForbidden, recorder.Code, "%s %s", route.method, route.path)
	}
}
