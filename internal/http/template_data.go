package httpx

import (
	"net/http"
	"net/url"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/http/ui/viewmodel"
)

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with the page chrome.
func (h *UIHandlers) NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{
		data: h.basePageData(r, meta),
	}
}

// WithPager resolves a pagination window into links under basePath that
// carry q. Callers pass the list's own filters rather than the request
// query, which is empty after a form post.
func (b *TemplateDataBuilder) WithPager(basePath string, q url.Values, w listing.Window) *TemplateDataBuilder {
	b.data["Pager"] = viewmodel.NewPager(w, func(page int) string {
		return pageURL(basePath, q, page)
	})
	return b
}

// WithState exposes a request state and its retry link.
func (b *TemplateDataBuilder) WithState(state listing.RequestState, retryURL string) *TemplateDataBuilder {
	b.data["State"] = state
	if state.IsError() {
		b.data["Error"] = true
		b.data["ErrorMessage"] = state.Message
		b.data["RetryURL"] = retryURL
	}
	return b
}

// WithNotice adds the outcome banner of the last row action.
func (b *TemplateDataBuilder) WithNotice(n *listing.Notice) *TemplateDataBuilder {
	if n != nil {
		b.data["Notice"] = n
	}
	return b
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
