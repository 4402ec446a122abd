package marketplace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/url"
	"slices"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

type requestBody struct {
	reader      io.Reader
	contentType string
}

// encodeBody renders p in the endpoint's encoding. Files are only accepted
// by multipart endpoints.
func encodeBody(enc resource.Encoding, p resource.Payload) (*requestBody, error) {
	if p.HasFiles() && enc != resource.EncodingMultipart {
		return nil, apperrors.Validation("This action does not accept file uploads.")
	}
	switch enc {
	case resource.EncodingNone, "":
		return nil, nil
	case resource.EncodingJSON:
		fields := p.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		return &requestBody{reader: bytes.NewReader(b), contentType: enc.ContentType()}, nil
	case resource.EncodingForm:
		form := url.Values{}
		for _, k := range sortedKeys(p.Fields) {
			form.Set(k, formValue(p.Fields[k]))
		}
		return &requestBody{reader: strings.NewReader(form.Encode()), contentType: enc.ContentType()}, nil
	case resource.EncodingMultipart:
		return encodeMultipart(p)
	default:
		return nil, apperrors.Internal(fmt.Sprintf("unsupported encoding %q", enc))
	}
}

func encodeMultipart(p resource.Payload) (*requestBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range sortedKeys(p.Fields) {
		if err := w.WriteField(k, formValue(p.Fields[k])); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode multipart field")
		}
	}
	for _, f := range p.Files {
		if f.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode multipart file")
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "read upload %q", f.Filename)
		}
	}
	if err := w.Close(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "finish multipart body")
	}
	return &requestBody{reader: &buf, contentType: w.FormDataContentType()}, nil
}

// formValue flattens a field for form and multipart bodies. Structured
// values (product variants) are sent as JSON text.
func formValue(v any) string {
	return resource.Stringify(v)
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
