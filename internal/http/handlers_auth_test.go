package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_LoginSetsRoundTripCookies(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuth{}}
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/r/orders", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://idp.example.com/authorize")
	require.NotNil(t, cookieNamed(w, stateCookieName))
	assert.Equal(t, "state-1", cookieNamed(w, stateCookieName).Value)
	assert.Equal(t, "nonce-1", cookieNamed(w, nonceCookieName).Value)
	assert.Equal(t, "/r/orders", cookieNamed(w, redirectCookieName).Value)
}

func TestAuthHandlers_LoginRejectsOffsiteRedirect(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuth{}}
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com/", nil))
	assert.Equal(t, "/", cookieNamed(w, redirectCookieName).Value)
}

func TestAuthHandlers_LoginFailure(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuth{beginErr: errors.New("provider down")}}
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandlers_Callback(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		cookies  []*http.Cookie
		wantCode int
		wantErr  string
	}{
		{name: "provider error", query: "?error=access_denied", wantCode: http.StatusBadRequest, wantErr: "provider_error"},
		{name: "missing code", query: "?state=state-1", wantCode: http.StatusBadRequest, wantErr: "missing_code"},
		{name: "missing state", query: "?code=good", wantCode: http.StatusBadRequest, wantErr: "missing_state"},
		{
			name: "state mismatch", query: "?code=good&state=other",
			cookies:  []*http.Cookie{{Name: stateCookieName, Value: "state-1"}},
			wantCode: http.StatusBadRequest, wantErr: "invalid_state",
		},
		{
			name: "missing nonce", query: "?code=good&state=state-1",
			cookies:  []*http.Cookie{{Name: stateCookieName, Value: "state-1"}},
			wantCode: http.StatusBadRequest, wantErr: "missing_nonce",
		},
		{
			name: "exchange fails", query: "?code=bad&state=state-1",
			cookies:  []*http.Cookie{{Name: stateCookieName, Value: "state-1"}, {Name: nonceCookieName, Value: "nonce-1"}},
			wantCode: http.StatusUnauthorized, wantErr: "login_completion_failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandlers{Svc: &fakeAuth{session: adminSession("tok")}}
			req := httptest.NewRequest(http.MethodGet, "/auth/callback"+tt.query, nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			w := httptest.NewRecorder()
			h.Callback(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
		})
	}
}

func TestAuthHandlers_CallbackIssuesSession(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuth{session: adminSession("tok")}}
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=good&state=state-1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "state-1"})
	req.AddCookie(&http.Cookie{Name: nonceCookieName, Value: "nonce-1"})
	req.AddCookie(&http.Cookie{Name: redirectCookieName, Value: "/r/vendors?page=2"})
	w := httptest.NewRecorder()
	h.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/r/vendors?page=2", w.Header().Get("Location"))
	sess := cookieNamed(w, sessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, testSessionID, sess.Value)
	assert.True(t, sess.HttpOnly)
}

func TestAuthHandlers_LogoutHTMX(t *testing.T) {
	f := newConsoleFixture(t, adminSession("tok"))
	w := f.post(t, "/auth/logout", nil, true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/auth/signed-out?redirect_uri=%2F", w.Header().Get("Hx-Redirect"))
	assert.Equal(t, []string{testSessionID}, f.auth.loggedOut)
	assert.Equal(t, -1, cookieNamed(w, sessionCookieName).MaxAge)
}

func TestAuthHandlers_LogoutNeedsCSRF(t *testing.T) {
	f := newConsoleFixture(t, adminSession("tok"))
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
	w := serve(f.router, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.auth.loggedOut)
}

func TestAuthHandlers_Status(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuth{session: adminSession("tok")}}

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
		w := httptest.NewRecorder()
		h.Status(w, req)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, true, body["has_api_token"])
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale"})
		w := httptest.NewRecorder()
		h.Status(w, req)

		assert.JSONEq(t, `{"authenticated": false}`, w.Body.String())
		assert.Equal(t, -1, cookieNamed(w, sessionCookieName).MaxAge)
	})
}
