package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

// maxUploadBytes bounds multipart bodies (banner and product images).
const maxUploadBytes = 10 << 20

// formField is one input of a resource form with its current value.
type formField struct {
	resource.Field
	Value   string
	Options []resource.Option
	// OptionsError is set when the select's choices could not be loaded.
	OptionsError string
}

// resourceFormView is the template model of a create or edit form.
type resourceFormView struct {
	Endpoint  resource.Endpoint
	Mode      FormMode
	ID        string
	ActionURL string
	CancelURL string
	Fields    []formField
	Multipart bool
	Hidden    map[string]string
}

// parseResourceForm reads the submitted fields of ep into a payload. Missing
// required values come back as field errors; file inputs are buffered so
// the request body can be released before the upstream call.
func parseResourceForm(r *http.Request, ep resource.Endpoint, mode FormMode) (resource.Payload, map[string]string, error) {
	if err := parseAnyForm(r); err != nil {
		return resource.Payload{}, nil, apperrors.Validationf("Unable to read the submitted form: %v", err)
	}

	payload := resource.Payload{Fields: make(map[string]any, len(ep.Fields))}
	errs := map[string]string{}
	for _, f := range ep.Fields {
		if f.Type == "file" {
			file, err := readFormFile(r, f.Name)
			if err != nil {
				errs[f.Name] = err.Error()
				continue
			}
			if file == nil {
				if f.Required && mode == FormModeCreate {
					errs[f.Name] = "This field is required."
				}
				continue
			}
			payload.Files = append(payload.Files, *file)
			continue
		}

		raw := strings.TrimSpace(r.FormValue(f.Name))
		if raw == "" {
			if f.Required {
				errs[f.Name] = "This field is required."
			}
			continue
		}
		if f.Type == "number" {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs[f.Name] = "Must be a number."
				continue
			}
			payload.Fields[f.Name] = n
			continue
		}
		payload.Fields[f.Name] = raw
	}
	return payload, errs, nil
}

func parseAnyForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return err
		}
		return nil
	}
	return r.ParseForm()
}

func readFormFile(r *http.Request, field string) (*resource.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read upload: %w", err)
	}
	defer f.Close()
	if hdr.Size == 0 {
		return nil, nil
	}
	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("unable to read upload: %w", err)
	}
	return &resource.File{Field: field, Filename: hdr.Filename, Content: bytes.NewReader(content)}, nil
}

// formFields pairs ep's fields with values and select options. Auth
// failures while loading options are returned; other lookup failures only
// disable that select.
func (h *UIHandlers) formFields(ctx context.Context, ep resource.Endpoint, values func(name string) string) ([]formField, error) {
	out := make([]formField, 0, len(ep.Fields))
	for _, f := range ep.Fields {
		ff := formField{Field: f}
		if f.Type != "file" && f.Type != "password" {
			ff.Value = values(f.Name)
		}
		if f.Type == "select" && f.Lookup != "" {
			opts, err := h.Resources.LookupOptions(ctx, f.Lookup, "")
			if apperrors.IsAuth(err) {
				return nil, err
			}
			if err != nil {
				h.logger().WarnContext(ctx, "form lookup failed", "resource", ep.Name, "lookup", f.Lookup, "error", err)
				ff.OptionsError = apperrors.UserMessage(err)
			}
			ff.Options = opts
		}
		out = append(out, ff)
	}
	return out, nil
}

func hasFileField(ep resource.Endpoint) bool {
	for _, f := range ep.Fields {
		if f.Type == "file" {
			return true
		}
	}
	return false
}

// rowValue prefills an edit form from the fetched row, and submitted values
// win over both.
func rowValue(row resource.Row, r *http.Request) func(string) string {
	return func(name string) string {
		if r != nil && r.Form != nil {
			if v, ok := r.Form[name]; ok && len(v) > 0 {
				return v[0]
			}
		}
		if row == nil {
			return ""
		}
		return row.String(name)
	}
}
