package httpx

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	marketplaceadmin "github.com/urbanmart/marketplace-admin"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Resources *service.ResourceService
	Orders    *service.OrderService
	Dashboard *service.DashboardService
	Settings  *service.SettingsService
	Audit     *service.AuditService
	Auth      AuthServiceInterface
	// Readiness backs GET /readyz, keyed by dependency name.
	Readiness map[string]ReadinessCheck
	// TemplateFS overrides where templates are read from; tests point it at disk.
	TemplateFS   fs.FS
	CookieDomain string
	IsDev        bool         // Development mode flag for hot reloading, etc.
	Logger       *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates the console router. Every UI route runs behind CSRF
// protection and, when an auth service is configured, a session check.
// Mutations additionally require the admin role.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Readiness))
	mux.Handle("GET /static/", staticHandler(services.IsDev))

	cfg := uiRouteConfig{Auth: services.Auth, CookieDomain: services.CookieDomain}
	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		}, cfg)
	}

	uiHandlers := setupUIHandlers(services)
	if uiHandlers != nil {
		registerUIRoutes(mux, uiHandlers, cfg)
	}

	return &notFoundHandler{mux: mux, uiHandlers: uiHandlers}
}

// setupUIHandlers creates UI handlers with a template renderer. Dev mode
// reads templates from disk; production uses the embedded copy.
func setupUIHandlers(services RouterServices) *UIHandlers {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	templateFS := services.TemplateFS
	if templateFS == nil {
		templateFS = templateSource(services.IsDev, logger)
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		logger.Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	h := &UIHandlers{T: tr, IsDev: services.IsDev, Logger: logger}
	// Typed nils must not leak into the interfaces.
	if services.Resources != nil {
		h.Resources = services.Resources
	}
	if services.Orders != nil {
		h.Orders = services.Orders
	}
	if services.Dashboard != nil {
		h.Dashboard = services.Dashboard
	}
	if services.Settings != nil {
		h.Settings = services.Settings
	}
	if services.Audit != nil {
		h.Audit = services.Audit
	}
	return h
}

func templateSource(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(marketplaceadmin.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Error("failed to open embedded templates; falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the
// embedded filesystem otherwise.
func staticHandler(isDev bool) http.Handler {
	var files http.FileSystem
	if isDev {
		files = http.Dir("frontend/static")
	} else if sub, err := fs.Sub(marketplaceadmin.StaticFS, "frontend/static"); err == nil {
		files = http.FS(sub)
	} else {
		files = http.Dir("frontend/static")
	}
	handler := http.StripPrefix("/static/", http.FileServer(files))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP serves the request through the mux and replaces the mux's bare
// 404 with the console's not-found page.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status != http.StatusNotFound || strings.HasPrefix(r.URL.Path, "/static/") || h.uiHandlers == nil {
		cw.flushTo(w)
		return
	}
	h.uiHandlers.NotFound(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}

// uiRouteConfig holds configuration for UI route registration.
type uiRouteConfig struct {
	Auth         AuthServiceInterface
	CookieDomain string
}

func (cfg uiRouteConfig) csrf() func(http.Handler) http.Handler {
	return CSRFProtection(CSRFConfig{CookieDomain: cfg.CookieDomain})
}

// authWrap applies CSRF protection and, when auth is configured, RequireAuthBrowser.
func (cfg uiRouteConfig) authWrap() func(http.Handler) http.Handler {
	csrf := cfg.csrf()
	if cfg.Auth == nil {
		return csrf
	}
	requireAuth := RequireAuthBrowser(cfg.Auth)
	return func(h http.Handler) http.Handler { return csrf(requireAuth(h)) }
}

// adminWrap is authWrap plus the admin role check. Without auth there is
// no session to check, which only happens in local development.
func (cfg uiRouteConfig) adminWrap() func(http.Handler) http.Handler {
	wrap := cfg.authWrap()
	if cfg.Auth == nil {
		return wrap
	}
	return func(h http.Handler) http.Handler { return wrap(RequireAdmin(h)) }
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, cfg uiRouteConfig) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.Handle("POST /auth/logout", cfg.csrf()(http.HandlerFunc(h.Logout)))
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	registerUIDashboardRoutes(mux, h, cfg)
	registerUIResourceRoutes(mux, h, cfg)
	registerUIOrderRoutes(mux, h, cfg)
	// Public auth-related UI routes (no auth wrapper)
	mux.Handle("GET /auth/signed-out", http.HandlerFunc(h.SignedOut))
}

func registerUIDashboardRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	wrap := cfg.authWrap()
	mux.Handle("GET /{$}", wrap(http.HandlerFunc(h.DashboardPage)))
	mux.Handle("GET /dashboard", wrap(http.HandlerFunc(h.DashboardPage)))
	mux.Handle("GET /audit", wrap(http.HandlerFunc(h.AuditPage)))
	mux.Handle("GET /settings", wrap(http.HandlerFunc(h.SettingsPage)))
	mux.Handle("POST /settings", cfg.adminWrap()(http.HandlerFunc(h.SettingsSave)))
}

// registerUIResourceRoutes wires the catalog-driven list, detail and form
// pages for every resource.
func registerUIResourceRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	wrap := cfg.authWrap()
	wrapAdmin := cfg.adminWrap()
	mux.Handle("GET /r/{resource}", wrap(http.HandlerFunc(h.ResourceList)))
	mux.Handle("GET /r/{resource}/{id}", wrap(http.HandlerFunc(h.ResourceDetail)))

	mux.Handle("GET /r/{resource}/new", wrapAdmin(http.HandlerFunc(h.ResourceNew)))
	mux.Handle("GET /r/{resource}/{id}/edit", wrapAdmin(http.HandlerFunc(h.ResourceEdit)))
	mux.Handle("GET /r/{resource}/{id}/delete", wrapAdmin(http.HandlerFunc(h.ResourceDeleteConfirm)))
	mux.Handle("POST /r/{resource}", wrapAdmin(http.HandlerFunc(h.ResourceCreate)))
	mux.Handle("POST /r/{resource}/{id}", wrapAdmin(http.HandlerFunc(h.ResourceUpdate)))
	mux.Handle("POST /r/{resource}/{id}/delete", wrapAdmin(http.HandlerFunc(h.ResourceDelete)))
	mux.Handle("DELETE /r/{resource}/{id}", wrapAdmin(http.HandlerFunc(h.ResourceDelete)))
	mux.Handle("POST /r/{resource}/{id}/actions/{action}", wrapAdmin(http.HandlerFunc(h.ResourceAction)))
}

func registerUIOrderRoutes(mux *http.ServeMux, h *UIHandlers, cfg uiRouteConfig) {
	wrapAdmin := cfg.adminWrap()
	mux.Handle("POST /orders/{id}/status", wrapAdmin(http.HandlerFunc(h.OrderSetStatus)))
	mux.Handle("POST /orders/{id}/items/{item}/status", wrapAdmin(http.HandlerFunc(h.OrderSetItemStatus)))
	mux.Handle("POST /orders/{id}/items/{item}/vendor", wrapAdmin(http.HandlerFunc(h.OrderAssignVendor)))
}
