package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFProtection(t *testing.T) {
	mw := CSRFProtection(CSRFConfig{})

	t.Run("get issues cookie", func(t *testing.T) {
		w := serve(mw(okHandler()), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		c := cookieNamed(w, DefaultCSRFCookieName)
		require.NotNil(t, c)
		assert.NotEmpty(t, c.Value)
		assert.False(t, c.HttpOnly)
	})

	t.Run("post without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
		assert.Equal(t, http.StatusForbidden, serve(mw(okHandler()), req).Code)
	})

	t.Run("post with header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
		req.Header.Set(DefaultCSRFHeaderName, "abc")
		assert.Equal(t, http.StatusOK, serve(mw(okHandler()), req).Code)
	})

	t.Run("post with mismatched header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
		req.Header.Set(DefaultCSRFHeaderName, "abd")
		assert.Equal(t, http.StatusForbidden, serve(mw(okHandler()), req).Code)
	})

	t.Run("post with form field", func(t *testing.T) {
		req := newFormRequest(t, "/", url.Values{"csrf_token": {"abc"}})
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
		assert.Equal(t, http.StatusOK, serve(mw(okHandler()), req).Code)
	})

	t.Run("token reaches handler", func(t *testing.T) {
		var seen string
		h := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { seen = GetCSRFToken(r) }))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "abc"})
		serve(h, req)
		assert.Equal(t, "abc", seen)
	})
}

func TestCompression(t *testing.T) {
	body := strings.Repeat("<p>marketplace</p>", 100)
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))

	t.Run("gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "br, gzip")
		w := serve(h, req)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})

	t.Run("gzip refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip;q=0")
		w := serve(h, req)
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body, w.Body.String())
	})
}

func TestCompression_SkipsBinaryContent(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	assert.Empty(t, serve(h, req).Header().Get("Content-Encoding"))
}

func TestSafeRedirectPath(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/r/orders?page=2":       "/r/orders?page=2",
		"https://evil.example/x": "/",
		"//evil.example/x":       "/",
		"relative/path":          "/",
		"/settings#section":      "/settings#section",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeRedirectPath(in), "input %q", in)
	}
}

func TestRedirectToLogin_UsesCurrentURLForHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/r/orders?page=4", nil)
	req.Header.Set("Hx-Request", "true")
	req.Header.Set("Hx-Current-Url", "https://admin.example.com/r/vendors?page=2")
	w := httptest.NewRecorder()
	redirectToLogin(w, req)
	assert.Equal(t, "/auth/signed-out?redirect_uri="+url.QueryEscape("/r/vendors?page=2"), w.Header().Get("Hx-Redirect"))
}

func TestRequireAdmin(t *testing.T) {
	withRole := func(role domainauth.Role) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/r/orders/1/delete", nil)
		return req.WithContext(SetSessionInContext(req.Context(), &domainauth.Session{ID: "s", Role: role}))
	}
	assert.Equal(t, http.StatusOK, serve(RequireAdmin(okHandler()), withRole(domainauth.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, serve(RequireAdmin(okHandler()), withRole(domainauth.RoleUser)).Code)
	assert.Equal(t, http.StatusForbidden, serve(RequireAdmin(okHandler()), httptest.NewRequest(http.MethodPost, "/", nil)).Code)
}

func TestLogging_AssignsRequestID(t *testing.T) {
	var seen string
	h := Logging(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	serve(h, req)
	assert.Equal(t, "req-42", seen)
}

func TestRecover(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	assert.Equal(t, http.StatusInternalServerError, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
