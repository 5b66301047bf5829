package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dsavelev/sessiond/internal/common"
	"github.com/dsavelev/sessiond/internal/logging"
	"github.com/dsavelev/sessiond/internal/server/models"
	"github.com/dsavelev/sessiond/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions struct {
	registerErr error
	loginRes    *services.AuthResult
	loginErr    error
	refreshRes  *services.AuthResult
	refreshErr  error
	logoutErr   error
	subject     string
	verifyErr   error

	lastLogout string
}

func (s *stubSessions) Register(ctx context.Context, username, email, password string) error {
	return s.registerErr
}

func (s *stubSessions) Login(ctx context.Context, username, password string) (*services.AuthResult, error) {
	return s.loginRes, s.loginErr
}

func (s *stubSessions) Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error) {
	return s.refreshRes, s.refreshErr
}

func (s *stubSessions) Logout(ctx context.Context, refreshToken string) error {
	s.lastLogout = refreshToken
	return s.logoutErr
}

func (s *stubSessions) VerifySubject(tokenString string) (string, error) {
	return s.subject, s.verifyErr
}

func newTestServer(t *testing.T, sessions SessionManager, items ItemManager) *HTTPServer {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv, err := NewHTTPServer(":0", logger, sessions, items, []string{"http://localhost:3000"})
	require.NoError(t, err)
	return srv
}

func perform(srv *HTTPServer, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.router().ServeHTTP(w, req)
	return w
}

func sampleAuthResult() *services.AuthResult {
	return &services.AuthResult{
		AccessToken:  "access-jwt",
		RefreshToken: "refresh-uuid",
		User:         &models.User{ID: 1, Username: "alice", Email: "alice@example.com"},
	}
}

func TestRegisterEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"ok", `{"username":"alice","email":"a@b.co","password":"secret1"}`, nil, http.StatusOK},
		{"malformed json", `{"username":`, nil, http.StatusBadRequest},
		{"validation", `{"username":"ab","email":"a@b.co","password":"secret1"}`, common.ErrValidation, http.StatusBadRequest},
		{"duplicate username", `{"username":"alice","email":"a@b.co","password":"secret1"}`, common.ErrUsernameTaken, http.StatusConflict},
		{"duplicate email", `{"username":"alice","email":"a@b.co","password":"secret1"}`, common.ErrEmailTaken, http.StatusConflict},
		{"storage failure", `{"username":"alice","email":"a@b.co","password":"secret1"}`, common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubSessions{registerErr: tt.serviceErr}, &stubItems{})

			w := perform(srv, http.MethodPost, "/auth/register", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLoginEndpoint_OK(t *testing.T) {
	srv := newTestServer(t, &stubSessions{loginRes: sampleAuthResult()}, &stubItems{})

	w := perform(srv, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"secret1"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-jwt", resp["accessToken"])
	assert.Equal(t, "refresh-uuid", resp["refreshToken"])
	user, ok := resp["user"].(map[string]any)
	require.True(t, ok, "user object missing: %v", resp)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	srv := newTestServer(t, &stubSessions{loginErr: common.ErrorUnauthorized}, &stubItems{})

	w := perform(srv, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"wrong"}`, nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
}

func TestRefreshEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"ok", `{"refreshToken":"refresh-uuid"}`, nil, http.StatusOK},
		{"missing field", `{}`, nil, http.StatusBadRequest},
		{"invalid token", `{"refreshToken":"ghost"}`, common.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"expired token", `{"refreshToken":"old"}`, common.ErrRefreshTokenExpired, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &stubSessions{
				refreshRes: sampleAuthResult(),
				refreshErr: tt.serviceErr,
			}, &stubItems{})

			w := perform(srv, http.MethodPost, "/auth/refresh", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				// invalid and expired tokens must be indistinguishable
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestLogoutEndpoint_AlwaysOK(t *testing.T) {
	sessions := &stubSessions{}
	srv := newTestServer(t, sessions, &stubItems{})

	w := perform(srv, http.MethodPost, "/auth/logout", `{"refreshToken":"tok"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", sessions.lastLogout)

	// even a service failure does not leak into the response
	srv = newTestServer(t, &stubSessions{logoutErr: common.ErrorInternal}, &stubItems{})
	w = perform(srv, http.MethodPost, "/auth/logout", `{"refreshToken":"tok"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// missing body is still a 200
	w = perform(srv, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     map[string]string
		verifyErr  error
		wantStatus int
	}{
		{"no header", nil, nil, http.StatusUnauthorized},
		{"not bearer", map[string]string{"Authorization": "Basic abc"}, nil, http.StatusUnauthorized},
		{"invalid token", map[string]string{"Authorization": "Bearer bad"}, common.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", map[string]string{"Authorization": "Bearer old"}, common.ErrTokenExpired, http.StatusUnauthorized},
		{"ok", map[string]string{"Authorization": "Bearer good"}, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := &stubItems{listRes: &services.ItemPage{Items: nil, Page: 0, Size: 10}}
			srv := newTestServer(t, &stubSessions{subject: "alice", verifyErr: tt.verifyErr}, items)

			w := perform(srv, http.MethodGet, "/items", "", tt.header)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}
