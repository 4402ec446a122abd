package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/http/ui/viewmodel"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

const errMsgFixBelow = "Please fix the errors below."

// ResourcesService is the resource surface the console needs.
type ResourcesService interface {
	Catalog() *resource.Catalog
	Endpoint(name string) (resource.Endpoint, error)
	NewListView(name string, q service.ViewQuery) (*listing.Controller[resource.Row], error)
	Get(ctx context.Context, name, id string) (resource.Row, error)
	Create(ctx context.Context, name string, p resource.Payload) (resource.Row, error)
	Update(ctx context.Context, name, id string, p resource.Payload) error
	DeleteAction(name, id string, confirmed bool) listing.Action
	CustomAction(name, id, action string, fields map[string]any) listing.Action
	LookupOptions(ctx context.Context, name, parent string) ([]resource.Option, error)
}

// OrdersService backs the order detail page.
type OrdersService interface {
	Detail(ctx context.Context, id string) (service.OrderDetail, error)
	AssignVendor(ctx context.Context, cartItemID, vendorID string) error
	SetStatus(ctx context.Context, orderID, status string) error
	SetItemStatus(ctx context.Context, itemID, status string) error
}

// DashboardLoader loads the landing page statistics.
type DashboardLoader interface {
	Load(ctx context.Context) (service.Dashboard, error)
}

// SettingsStore reads and writes platform settings.
type SettingsStore interface {
	Get(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

// AuditLister pages through the audit trail.
type AuditLister interface {
	Enabled() bool
	NewListView(page int, f service.AuditFilter) (*listing.Controller[model.AuditEntry], error)
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ ResourcesService = (*service.ResourceService)(nil)
	_ OrdersService    = (*service.OrderService)(nil)
	_ DashboardLoader  = (*service.DashboardService)(nil)
	_ SettingsStore    = (*service.SettingsService)(nil)
	_ AuditLister      = (*service.AuditService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Resources ResourcesService
	Orders    OrdersService
	Dashboard DashboardLoader
	Settings  SettingsStore
	Audit     AuditLister
	IsDev     bool // Development mode flag for enhanced error reporting
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// parsePage reads ?page=, defaulting to 1. Out of range values are clamped
// by the pagination controller once the total is known.
func parsePage(q url.Values) int {
	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && n > 0 {
		return n
	}
	return 1
}

// pageURL returns basePath with page set, preserving other non-empty query params.
func pageURL(basePath string, q url.Values, page int) string {
	qq := make(url.Values, len(q))
	for k, v := range q {
		if k == "page" || strings.HasPrefix(k, "hx-") || strings.HasPrefix(k, "hx_") {
			continue
		}
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				qq.Add(k, s)
			}
		}
	}
	if page > 1 {
		qq.Set("page", strconv.Itoa(page))
	}
	if enc := qq.Encode(); enc != "" {
		return basePath + "?" + enc
	}
	return basePath
}

// triggerToast sends a standardized HX-Trigger payload for toast notifications.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || strings.TrimSpace(message) == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]any{
		"message": message,
		"type":    strings.TrimSpace(toastType),
	})
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request/session context.
func (h *UIHandlers) buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
		Nav:         h.navItems(r.URL.Path),
	}

	if session := GetSessionFromContext(r.Context()); session != nil {
		layout.User = &viewmodel.User{
			Name:  session.DisplayName(),
			Email: session.Email,
			Role:  string(session.Role),
		}
		layout.IsAuthenticated = true
	}

	return layout
}

func (h *UIHandlers) navItems(path string) []viewmodel.NavItem {
	items := []viewmodel.NavItem{{Label: "Dashboard", Href: "/", Active: path == "/" || path == "/dashboard"}}
	if h.Resources != nil && h.Resources.Catalog() != nil {
		for _, ep := range h.Resources.Catalog().Browsable() {
			href := "/r/" + ep.Name
			items = append(items, viewmodel.NavItem{
				Label:  ep.Title,
				Href:   href,
				Active: path == href || strings.HasPrefix(path, href+"/"),
			})
		}
	}
	items = append(items, viewmodel.NavItem{Label: "Settings", Href: "/settings", Active: path == "/settings"})
	if h.Audit != nil && h.Audit.Enabled() {
		items = append(items, viewmodel.NavItem{Label: "Audit trail", Href: "/audit", Active: path == "/audit"})
	}
	return items
}

// basePageData constructs the common page data map with user context.
func (h *UIHandlers) basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := h.buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"Nav":             layout.Nav,
	}
	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	// Quoted in error banners so a report can be matched to the request log.
	if id := RequestIDFrom(r.Context()); id != "" {
		data["RequestID"] = id
	}
	return data
}

// renderPage renders a full page, or for htmx requests the content plus
// out-of-band title updates.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.Path})

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	currentPage, _ := data["CurrentPage"].(string)

	// htmx updates document.title from a <title> in the swapped content.
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	oob := `<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` + html.EscapeString(pageTitle) + `</h1>`
	if _, err := w.Write([]byte(oob)); err != nil {
		h.logger().Error("failed to write partial header title", "error", err)
		return
	}

	if err := h.T.executeTo(w, ContentTemplateFor(currentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<div class="dev-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
