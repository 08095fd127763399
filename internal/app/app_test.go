package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todo_api/pkg/config"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Driver: "sql", Table: "todos"},
		DB: config.DBConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		},
		Identity: config.IdentityConfig{
			Driver: "local",
			LocalUsers: []config.LocalUser{
				{Username: "alice", Password: "first-pass", MustChangePassword: true},
				{Username: "bob", Password: "bob-pass"},
			},
		},
		Auth: config.AuthConfig{
			Required:  true,
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	}
}

func request(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewLocalStack(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), localConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	w := request(t, a.Router, http.MethodPost, "/login", `{"username":"bob","password":"bob-pass"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := w.Body.String()
	require.NotEmpty(t, token)

	w = request(t, a.Router, http.MethodGet, "/todos", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, a.Router, http.MethodPost, "/todos", `{"taskName":"write docs","status":"open"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(t, a.Router, http.MethodGet, "/todos", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"taskName":"write docs"`)
}

func TestNewLocalPasswordChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), localConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	w := request(t, a.Router, http.MethodPost, "/login", `{"username":"alice","password":"first-pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "New password required", w.Body.String())

	w = request(t, a.Router, http.MethodPost, "/login",
		`{"username":"alice","password":"first-pass","newPassword":"second-pass"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 密碼已更新，不再需要 challenge
	w = request(t, a.Router, http.MethodPost, "/login", `{"username":"alice","password":"second-pass"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(t, a.Router, http.MethodPost, "/login", `{"username":"alice","password":"first-pass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect credentials", w.Body.String())
}

func TestNewRejectsUnknownDrivers(t *testing.T) {
	cfg := localConfig(t)
	cfg.Store.Driver = "cassandra"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported store driver "cassandra"`)

	cfg = localConfig(t)
	cfg.Identity.Driver = "ldap"
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unsupported identity driver "ldap"`)
}

func TestNewLocalRequiresSecret(t *testing.T) {
	cfg := localConfig(t)
	cfg.Auth.JWTSecret = ""
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "auth.jwt_secret is required")
}

func TestNewCognitoAuthNeedsUserPool(t *testing.T) {
	cfg := localConfig(t)
	cfg.Identity = config.IdentityConfig{Driver: "cognito", ClientID: "client-1"}
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "identity.user_pool_id")

	cfg.Auth.Required = false
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	a.Close()
}

func TestNewCognitoRejectsUnsignedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := localConfig(t)
	cfg.AWS.Region = "us-east-1"
	cfg.Identity = config.IdentityConfig{Driver: "cognito", ClientID: "client-1", UserPoolID: "us-east-1_pool"}
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	enc := base64.RawURLEncoding
	token := enc.EncodeToString([]byte(`{"alg":"none"}`)) + "." +
		enc.EncodeToString([]byte(`{"sub":"attacker","aud":"client-1","token_use":"id","cognito:username":"admin"}`)) +
		".garbage"

	w := request(t, a.Router, http.MethodGet, "/todos", "", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
