package resource

import (
	"io"
	"strings"
)

// File is one uploaded file in a multipart mutation.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Payload is the body of a create, update or custom action request.
type Payload struct {
	Fields map[string]any
	Files  []File
	// Action selects Endpoint.Actions[Action] for Update; empty means the
	// endpoint's update request.
	Action string
}

// Set adds a field, returning the payload for chaining.
func (p Payload) Set(key string, value any) Payload {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	p.Fields[key] = value
	return p
}

// HasFiles reports whether the payload carries uploads.
func (p Payload) HasFiles() bool { return len(p.Files) > 0 }

// ListQuery selects one page of a list endpoint.
type ListQuery struct {
	Page     int
	PageSize int
	// Parent fills {parent} in nested list paths.
	Parent string
	// Filters are forwarded as query parameters.
	Filters map[string]string
}

// Search returns the free-text search term, if any.
func (q ListQuery) Search() string {
	return strings.TrimSpace(q.Filters["q"])
}

// MatchRows keeps the rows where any of fields contains term, case-insensitively.
func MatchRows(rows []Row, term string, fields []string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(fields) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(row.String(f)), term) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
