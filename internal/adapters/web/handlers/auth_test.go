package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockAuthService) CreateUser(ctx context.Context, user domain.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func TestAuthHandler_LoginSetsCookie(t *testing.T) {
	auth := new(mockAuthService)
	creds := domain.Credentials{Username: "admin", Password: "secret"}
	auth.On("Login", mock.Anything, creds).Return("tok-123", nil)

	h := NewAuthHandler(auth, nil)
	body, _ := json.Marshal(creds)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "tok-123", cookies[0].Value)
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	auth := new(mockAuthService)
	creds := domain.Credentials{Username: "admin", Password: "wrong"}
	auth.On("Login", mock.Anything, creds).Return("", assert.AnError)

	h := NewAuthHandler(auth, nil)
	body, _ := json.Marshal(creds)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginRejectsNonPost(t *testing.T) {
	h := NewAuthHandler(new(mockAuthService), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
	rec := httptest.NewRecorder()

	h.HandleLogin(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthHandler_HandleMeReturnsUser(t *testing.T) {
	h := NewAuthHandler(new(mockAuthService), nil)
	user := &domain.User{Username: "operator1", Role: domain.RoleOperator}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	h.HandleMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "operator1", out["username"])
	assert.Equal(t, "operator", out["role"])
}

func TestAuthHandler_HandleMeWithoutUserIsUnauthorized(t *testing.T) {
	h := NewAuthHandler(new(mockAuthService), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()

	h.HandleMe(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
