package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookhub/internal/http-api/dto"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, username, password)
	var user *models.User
	if args.Get(2) != nil {
		user = args.Get(2).(*models.User)
	}
	return args.String(0), args.String(1), user, args.Error(3)
}

func (m *mockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) RevokeToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthService) ValidateToken(tokenString string) (*service.TokenClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenClaims), args.Error(1)
}

func authRouter(svc *mockAuthService, accessTokenTTL time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(svc, accessTokenTTL).RegisterRoutes(api)
	return r
}

func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterEndpoint_Created(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Register", mock.Anything, "alice", "hunter2-hunter2").
		Return(&models.User{ID: "u1", Username: "alice"}, nil)

	r := authRouter(svc, 15*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Username: "alice", Password: "hunter2-hunter2"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2-hunter2")
}

func TestRegisterEndpoint_TakenUsernameIs409(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Register", mock.Anything, "alice", "hunter2-hunter2").
		Return(nil, service.ErrUsernameTaken)

	r := authRouter(svc, 15*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Username: "alice", Password: "hunter2-hunter2"}))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterEndpoint_ShortPasswordIs400(t *testing.T) {
	svc := new(mockAuthService)
	r := authRouter(svc, 15*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/register",
		dto.RegisterRequest{Username: "alice", Password: "short"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

// Both failure modes produce the same status and the same body.
func TestLoginEndpoint_UniformFailure(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "nobody", "whatever").
		Return("", "", nil, service.ErrInvalidCredentials)
	svc.On("Login", mock.Anything, "alice", "wrong-password").
		Return("", "", nil, service.ErrInvalidCredentials)

	r := authRouter(svc, 15*time.Minute)

	unknown := httptest.NewRecorder()
	r.ServeHTTP(unknown, jsonRequest(t, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Username: "nobody", Password: "whatever"}))

	wrongPassword := httptest.NewRecorder()
	r.ServeHTTP(wrongPassword, jsonRequest(t, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Username: "alice", Password: "wrong-password"}))

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
}

func TestLoginEndpoint_ReturnsTokens(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "alice", "correct-horse-battery").
		Return("access-token", "refresh-token", &models.User{ID: "u1", Username: "alice"}, nil)

	r := authRouter(svc, 15*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Username: "alice", Password: "correct-horse-battery"}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

// The advertised expiry follows the configured token lifetime.
func TestLoginEndpoint_ExpiresInMatchesTokenTTL(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, "alice", "correct-horse-battery").
		Return("access-token", "refresh-token", &models.User{ID: "u1", Username: "alice"}, nil)

	r := authRouter(svc, 5*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Username: "alice", Password: "correct-horse-battery"}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(300), resp.ExpiresIn)
}

func TestRevokeEndpoint_AlwaysSucceeds(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("RevokeToken", mock.Anything, "bogus-token").
		Return(service.ErrInvalidToken)

	r := authRouter(svc, 15*time.Minute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/api/auth/revoke",
		dto.RevokeTokenRequest{RefreshToken: "bogus-token"}))

	assert.Equal(t, http.StatusOK, w.Code)
}
