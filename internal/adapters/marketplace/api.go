package marketplace

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

const (
	dashboardPath   = "/admin/dashboard"
	getSettingsPath = "/admin/get-settings"
	setSettingsPath = "/admin/set-settings"
)

// DashboardCounts fetches the landing page statistics.
func (c *Client) DashboardCounts(ctx context.Context) (model.DashboardCounts, error) {
	var out model.DashboardCounts
	doc, err := c.do(ctx, call{resource: "dashboard", operation: "get", method: http.MethodGet, path: dashboardPath})
	if err != nil {
		return out, err
	}
	if err := decodeData(doc, &out); err != nil {
		return out, err
	}
	return out, nil
}

// GetSettings fetches the platform settings. A 404 surfaces as a validation
// error with Status 404; callers decide whether that means defaults.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	out := model.DefaultSettings()
	doc, err := c.do(ctx, call{resource: "settings", operation: "get", method: http.MethodGet, path: getSettingsPath})
	if err != nil {
		return out, err
	}
	if err := decodeData(doc, &out); err != nil {
		return out, err
	}
	return out, nil
}

// SaveSettings stores the platform settings.
func (c *Client) SaveSettings(ctx context.Context, s model.Settings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode settings")
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode settings")
	}
	body, err := encodeBody(resource.EncodingJSON, resource.Payload{Fields: fields})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{
		resource:  "settings",
		operation: "update",
		method:    http.MethodPost,
		path:      setSettingsPath,
		body:      body,
	})
	return err
}

// decodeData re-decodes doc.data (or doc when not enveloped) into dst.
func decodeData(doc any, dst any) error {
	src := doc
	if m, ok := doc.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			src = data
		}
	}
	if src == nil {
		return nil
	}
	b, err := json.Marshal(src)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode marketplace response")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServer, "Unexpected response from the marketplace API")
	}
	return nil
}
