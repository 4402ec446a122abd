package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// AuditPage serves GET /audit, the paged record of console mutations.
func (h *UIHandlers) AuditPage(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: "Audit trail - Marketplace Admin", PageTitle: "Audit trail", CurrentPage: PageAudit}
	if h.Audit == nil || !h.Audit.Enabled() {
		h.renderPage(w, r, h.NewTemplateData(r, meta).With("Disabled", true).Build())
		return
	}

	q := r.URL.Query()
	filter := service.AuditFilter{
		Resource: strings.TrimSpace(q.Get("resource")),
		Actor:    strings.TrimSpace(q.Get("actor")),
	}
	ctrl, err := h.Audit.NewListView(parsePage(q), filter)
	if err != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta:   meta,
			Data:       map[string]any{"State": listing.Failed(apperrors.UserMessage(err))},
			StatusCode: DetermineErrorStatus(err),
		})
		return
	}
	defer ctrl.Close()

	// Errors land in the view state.
	_ = ctrl.Mount(r.Context())
	view := ctrl.Snapshot()

	current := url.Values{}
	if filter.Resource != "" {
		current.Set("resource", filter.Resource)
	}
	if filter.Actor != "" {
		current.Set("actor", filter.Actor)
	}
	if view.Page.Current > 1 {
		current.Set("page", strconv.Itoa(view.Page.Current))
	}
	self := "/audit"
	if enc := current.Encode(); enc != "" {
		self += "?" + enc
	}

	builder := h.NewTemplateData(r, meta).
		With("Filter", filter).
		With("Table", view.Table).
		WithState(view.State, self)
	if view.State.IsSuccess() {
		builder.WithPager("/audit", current, view.Window)
	}
	if IsHTMX(r) {
		HTMX(w).PushURL(self)
	}
	h.renderPage(w, r, builder.Build())
}
