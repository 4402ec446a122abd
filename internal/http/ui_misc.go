package httpx

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// SignedOut renders the signed-out page with a sign-in button that returns
// the admin to where they were.
func (h *UIHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	redirect := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	loginURL := "/auth/login?redirect_uri=" + url.QueryEscape(redirect)
	if h.T == nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}
	data := map[string]any{
		"Title":       "Signed out - Marketplace Admin",
		"RedirectURI": redirect,
		"LoginURL":    loginURL,
	}
	var buf bytes.Buffer
	if err := h.T.executeTo(&buf, "signed-out-page", data); err != nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger().Error("failed to write signed-out response", "error", err)
	}
}

// NotFound answers unknown routes and resources: JSON under /api/, an
// error page otherwise.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json") {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
		return
	}

	isAuthenticated := GetSessionFromContext(r.Context()) != nil
	data := map[string]any{
		"Title":           "Page Not Found - Marketplace Admin",
		"Code":            "404",
		"Message":         "The page you're looking for doesn't exist.",
		"IsAuthenticated": isAuthenticated,
		"ShowLogin":       !isAuthenticated,
		"LoginURL":        "/auth/login?redirect_uri=" + url.QueryEscape(safeRedirectPath(r.URL.RequestURI())),
	}

	if h.T == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := h.T.executeTo(&buf, "error-layout", data); err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger().Error("failed to write not-found response", "error", err)
	}
}
