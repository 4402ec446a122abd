package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

// decodeResponse maps the HTTP status to the error taxonomy and decodes a
// successful JSON body. An empty 2xx body decodes to nil.
func decodeResponse(resp *http.Response) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Network(err)
	}

	var doc any
	var decodeErr error
	if len(strings.TrimSpace(string(raw))) > 0 {
		decodeErr = json.Unmarshal(raw, &doc)
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		msg := messageOf(doc)
		if msg == "" {
			msg = "Your session has expired. Please sign in again."
		}
		e := apperrors.Auth(msg)
		e.Status = status
		return nil, e
	case status >= 400 && status < 500:
		e := apperrors.Validation(messageOr(doc, status))
		e.Status = status
		return nil, e
	case status >= 500:
		return nil, apperrors.Server(status, messageOr(doc, status))
	case status < 200 || status >= 300:
		return nil, apperrors.Server(status, http.StatusText(status))
	}

	if decodeErr != nil {
		// A 2xx with a body that is not JSON is an unrecognized shape.
		return nil, nil
	}
	if m, ok := doc.(map[string]any); ok {
		if success, ok := m["success"].(bool); ok && !success {
			e := apperrors.Validation(messageOr(doc, status))
			e.Status = status
			return nil, e
		}
	}
	return doc, nil
}

func messageOf(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func messageOr(doc any, status int) string {
	if msg := messageOf(doc); msg != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}

// transportError classifies failures where no response was received.
func transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "Request was canceled")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "Request to the marketplace API timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "Request to the marketplace API timed out")
	}
	return apperrors.Network(err)
}
