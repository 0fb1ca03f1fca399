package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/sweetshop/apiserver/config"
	"github.com/sweetshop/apiserver/internal/db"
	"github.com/sweetshop/apiserver/internal/services"
	"github.com/sweetshop/apiserver/internal/store"
)

const testSecret = "test-secret"

// newTestRouter assembles the full route tree over an in-memory SQLite
// store, with event publishing and image storage disabled.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	safeName := url.PathEscape(t.Name())
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		safeName,
	)

	dbConn, err := db.OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConn.Close() })

	require.NoError(t, db.RunMigrations(dbConn, config.DriverSQLite))

	sweetRepo := store.NewSweetRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	sweetService := services.NewSweetService(sweetRepo)
	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(sweetRepo, nil, "", nil)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, time.Hour)
	})
	router.Route("/sweets", func(r chi.Router) {
		SweetRouter(r, sweetService, inventoryService, nil, RequireAuth(testSecret))
	})
	return router
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &value))
	return value
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, router http.Handler, email, password, role string) string {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, "register failed: %s", recorder.Body.String())

	recorder = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, recorder.Code, "login failed: %s", recorder.Body.String())

	return decodeBody[AuthResponse](t, recorder).Token
}
