// Package resource describes the marketplace API resources the console can
// list and mutate, and the generic row type their JSON is decoded into.
package resource

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Encoding is the request body encoding of a mutation.
type Encoding string

const (
	EncodingJSON      Encoding = "json"
	EncodingMultipart Encoding = "multipart"
	EncodingForm      Encoding = "form"
	EncodingNone      Encoding = "none"
)

// Valid reports whether the encoding is supported.
func (e Encoding) Valid() bool {
	switch e {
	case EncodingJSON, EncodingMultipart, EncodingForm, EncodingNone:
		return true
	default:
		return false
	}
}

// ContentType is the request Content-Type header for the encoding. Multipart
// returns the bare media type; the boundary is appended by the writer.
func (e Encoding) ContentType() string {
	switch e {
	case EncodingMultipart:
		return "multipart/form-data"
	case EncodingForm:
		return "application/x-www-form-urlencoded"
	case EncodingNone:
		return ""
	default:
		return "application/json"
	}
}

// ListSpec describes a paginated list endpoint and where the rows and total
// page count live in its response.
type ListSpec struct {
	Path string `yaml:"path"`
	// RowsPath and TotalPagesPath are JMESPath expressions evaluated against
	// the decoded response body.
	RowsPath       string `yaml:"rows"`
	TotalPagesPath string `yaml:"total_pages"`
	// Search names the fields matched by the q filter on the returned page.
	Search []string `yaml:"search"`
}

// ActionSpec describes one mutation request.
type ActionSpec struct {
	Method   string   `yaml:"method"`
	Path     string   `yaml:"path"`
	Encoding Encoding `yaml:"encoding"`
	// IDParam, when set, sends the row id as a body field of that name
	// instead of (or as well as) the {id} path placeholder.
	IDParam string `yaml:"id_param"`
	// Label is the button text for custom actions.
	Label string `yaml:"label"`
	// Success is the notice shown after the action completes.
	Success string `yaml:"success"`
}

// Defined reports whether the spec names a request.
func (a ActionSpec) Defined() bool { return a.Path != "" }

// Field is one input on a create or edit form.
type Field struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label"`
	Type     string `yaml:"type"` // text, textarea, number, password, file, select
	Required bool   `yaml:"required"`
	// Lookup names the resource whose rows populate a select.
	Lookup string `yaml:"lookup"`
}

// Endpoint is the static descriptor of one marketplace resource.
type Endpoint struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	IDField  string `yaml:"id_field"`
	PageSize int    `yaml:"page_size"`
	// Parent names the resource whose id fills {parent} in the list path.
	Parent  string                `yaml:"parent"`
	List    ListSpec              `yaml:"list"`
	Get     ActionSpec            `yaml:"get"`
	Create  ActionSpec            `yaml:"create"`
	Update  ActionSpec            `yaml:"update"`
	Remove  ActionSpec            `yaml:"remove"`
	Actions map[string]ActionSpec `yaml:"actions"`
	Fields  []Field               `yaml:"fields"`
}

// CanGet reports whether single rows can be fetched.
func (e Endpoint) CanGet() bool { return e.Get.Defined() }

// CanCreate reports whether new rows can be created.
func (e Endpoint) CanCreate() bool { return e.Create.Defined() }

// CanUpdate reports whether rows can be edited.
func (e Endpoint) CanUpdate() bool { return e.Update.Defined() }

// CanRemove reports whether rows can be deleted.
func (e Endpoint) CanRemove() bool { return e.Remove.Defined() }

// ReadOnly reports whether the resource has no mutations at all.
func (e Endpoint) ReadOnly() bool {
	return !e.CanCreate() && !e.CanUpdate() && !e.CanRemove() && len(e.Actions) == 0
}

// Action returns the named custom action.
func (e Endpoint) Action(name string) (ActionSpec, bool) {
	a, ok := e.Actions[name]
	return a, ok && a.Defined()
}

// ActionNames returns the custom action names in stable order.
func (e Endpoint) ActionNames() []string {
	names := make([]string, 0, len(e.Actions))
	for name := range e.Actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ListPath expands {parent} in the list path.
func (e Endpoint) ListPath(parent string) (string, error) {
	if strings.Contains(e.List.Path, "{parent}") {
		if strings.TrimSpace(parent) == "" {
			return "", fmt.Errorf("resource %q requires a parent id", e.Name)
		}
		return strings.ReplaceAll(e.List.Path, "{parent}", url.PathEscape(parent)), nil
	}
	return e.List.Path, nil
}

// ExpandPath substitutes the escaped id for {id}.
func ExpandPath(path, id string) string {
	return strings.ReplaceAll(path, "{id}", url.PathEscape(id))
}

// NeedsID reports whether the action addresses a specific row.
func (a ActionSpec) NeedsID() bool {
	return strings.Contains(a.Path, "{id}") || a.IDParam != ""
}

func (a *ActionSpec) normalize(defaultMethod string) {
	a.Method = strings.ToUpper(strings.TrimSpace(a.Method))
	if a.Method == "" {
		a.Method = defaultMethod
	}
	if a.Encoding == "" {
		if a.Method == http.MethodGet || a.Method == http.MethodDelete {
			a.Encoding = EncodingNone
		} else {
			a.Encoding = EncodingJSON
		}
	}
}
