package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when only field errors are present)
	Err error
	// FieldErrors contains field-level validation errors (field name → message)
	FieldErrors map[string]string
	PageMeta    PageMeta
	// Data carries page data to preserve, such as submitted form values
	Data map[string]any
	// StatusCode defaults to 200 so htmx swaps the response
	StatusCode int
	// ShowToast also reports the message through the showToast event
	ShowToast bool
}

// RenderError renders a page with a banner and field errors derived from opts.Err.
func (h *UIHandlers) RenderError(opts ErrorOpts) {
	builder := h.NewTemplateData(opts.R, opts.PageMeta)

	generalError := processError(opts.Err, &opts.FieldErrors)
	if status := DetermineErrorStatus(opts.Err); status >= http.StatusInternalServerError {
		ctx := opts.R.Context()
		h.logger().WarnContext(ctx, "rendering upstream failure",
			"request_id", RequestIDFrom(ctx),
			"path", opts.R.URL.Path,
			"status", status,
			"error", opts.Err,
		)
	}

	if len(opts.FieldErrors) > 0 {
		builder.WithFieldErrors(opts.FieldErrors)
	}
	if generalError != "" {
		builder.WithError(generalError)
	} else if len(opts.FieldErrors) > 0 {
		builder.WithError(errMsgFixBelow)
	}

	for k, v := range opts.Data {
		builder.With(k, v)
	}

	if opts.ShowToast && generalError != "" {
		triggerToast(opts.W, generalError, "error")
	}
	if opts.StatusCode != 0 {
		opts.W.Header().Set("Content-Type", "text/html; charset=utf-8")
		opts.W.WriteHeader(opts.StatusCode)
	}

	h.renderPage(opts.W, opts.R, builder.Build())
}

// DetermineErrorStatus maps error classes that are not the admin's to fix
// onto a status. Zero means the default (200, so htmx swaps the response).
func DetermineErrorStatus(err error) int {
	switch {
	case err == nil:
		return 0
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsNetwork(err), apperrors.IsTimeout(err):
		return http.StatusBadGateway
	case apperrors.IsServer(err):
		return http.StatusBadGateway
	default:
		return 0
	}
}

// processError returns the banner text for err, moving field-scoped
// validation errors into fieldErrors. Returns "" for a nil error.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was canceled."
	}

	if field := apperrors.GetField(err); field != "" && apperrors.IsValidation(err) && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[field] = apperrors.UserMessage(err)
		return errMsgFixBelow
	}

	return apperrors.UserMessage(err)
}

// redirectOnAuth sends the admin to sign in again when err is an auth
// failure. It reports whether a response was written.
func (h *UIHandlers) redirectOnAuth(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apperrors.IsAuth(err) {
		return false
	}
	h.logger().InfoContext(r.Context(), "marketplace credential rejected, redirecting to login",
		"path", r.URL.Path, "htmx", IsHTMX(r))
	redirectToLogin(w, r)
	return true
}

// isNoCredential reports a list view that never fetched because the session
// carries no API token.
func isNoCredential(err error) bool {
	return errors.Is(err, listing.ErrNoCredential)
}
