package resource

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jmespath-community/go-jmespath"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRowsPath locates rows in the standard envelope.
	DefaultRowsPath = "data"
	// DefaultTotalPagesPath tolerates both spellings the API uses.
	DefaultTotalPagesPath = "pagination.total_pages || pagination.totalPages"
	// DefaultPageSize is the page size when neither the catalog nor config sets one.
	DefaultPageSize = 10
	defaultIDField  = "id"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// ErrUnknownResource is returned when a resource name is not in the catalog.
var ErrUnknownResource = errors.New("unknown resource")

// Catalog is the immutable set of configured endpoints.
type Catalog struct {
	order     []string
	endpoints map[string]Endpoint
}

type catalogDoc struct {
	Resources []Endpoint `yaml:"resources"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(embeddedCatalog))
}

// MustDefaultCatalog is DefaultCatalog for callers that treat a broken
// embedded catalog as a programming error.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalogFile parses a catalog from path, or the embedded catalog when
// path is empty.
func LoadCatalogFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog decodes and validates a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc catalogDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(doc.Resources...)
}

// NewCatalog applies defaults to endpoints and validates them.
func NewCatalog(endpoints ...Endpoint) (*Catalog, error) {
	c := &Catalog{endpoints: make(map[string]Endpoint, len(endpoints))}
	var errs []error
	for _, ep := range endpoints {
		ep = withDefaults(ep)
		if err := validateEndpoint(ep); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.endpoints[ep.Name]; dup {
			errs = append(errs, fmt.Errorf("resource %q: duplicate name", ep.Name))
			continue
		}
		c.endpoints[ep.Name] = ep
		c.order = append(c.order, ep.Name)
	}
	for _, name := range c.order {
		ep := c.endpoints[name]
		if ep.Parent != "" {
			if _, ok := c.endpoints[ep.Parent]; !ok {
				errs = append(errs, fmt.Errorf("resource %q: unknown parent %q", name, ep.Parent))
			}
		}
		for _, f := range ep.Fields {
			if f.Lookup == "" {
				continue
			}
			if _, ok := c.endpoints[f.Lookup]; !ok {
				errs = append(errs, fmt.Errorf("resource %q: field %q looks up unknown resource %q", name, f.Name, f.Lookup))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func withDefaults(ep Endpoint) Endpoint {
	ep.Name = strings.TrimSpace(ep.Name)
	if ep.Title == "" {
		ep.Title = ep.Name
	}
	if ep.IDField == "" {
		ep.IDField = defaultIDField
	}
	if ep.PageSize <= 0 {
		ep.PageSize = DefaultPageSize
	}
	if ep.List.RowsPath == "" {
		ep.List.RowsPath = DefaultRowsPath
	}
	if ep.List.TotalPagesPath == "" {
		ep.List.TotalPagesPath = DefaultTotalPagesPath
	}
	ep.Get.normalize(http.MethodGet)
	ep.Create.normalize(http.MethodPost)
	ep.Update.normalize(http.MethodPut)
	ep.Remove.normalize(http.MethodDelete)
	if len(ep.Actions) > 0 {
		actions := make(map[string]ActionSpec, len(ep.Actions))
		for name, a := range ep.Actions {
			a.normalize(http.MethodPut)
			if a.Label == "" {
				a.Label = name
			}
			actions[name] = a
		}
		ep.Actions = actions
	}
	return ep
}

func validateEndpoint(ep Endpoint) error {
	if ep.Name == "" {
		return errors.New("resource without a name")
	}
	if ep.List.Path == "" {
		return fmt.Errorf("resource %q: list path is required", ep.Name)
	}
	if !strings.HasPrefix(ep.List.Path, "/") {
		return fmt.Errorf("resource %q: list path must start with /", ep.Name)
	}
	if strings.Contains(ep.List.Path, "{parent}") && ep.Parent == "" {
		return fmt.Errorf("resource %q: list path uses {parent} but no parent is set", ep.Name)
	}
	for _, expr := range []string{ep.List.RowsPath, ep.List.TotalPagesPath} {
		if _, err := jmespath.Compile(expr); err != nil {
			return fmt.Errorf("resource %q: invalid expression %q: %w", ep.Name, expr, err)
		}
	}
	specs := map[string]ActionSpec{"get": ep.Get, "create": ep.Create, "update": ep.Update, "remove": ep.Remove}
	for name, a := range ep.Actions {
		specs["actions."+name] = a
	}
	for name, a := range specs {
		if !a.Defined() {
			continue
		}
		if !a.Encoding.Valid() {
			return fmt.Errorf("resource %q: %s has unknown encoding %q", ep.Name, name, a.Encoding)
		}
		if !strings.HasPrefix(a.Path, "/") {
			return fmt.Errorf("resource %q: %s path must start with /", ep.Name, name)
		}
	}
	for _, a := range []ActionSpec{ep.Get, ep.Update, ep.Remove} {
		if a.Defined() && !a.NeedsID() {
			return fmt.Errorf("resource %q: %s %s does not address a row", ep.Name, a.Method, a.Path)
		}
	}
	return nil
}

// Lookup returns the named endpoint.
func (c *Catalog) Lookup(name string) (Endpoint, error) {
	ep, ok := c.endpoints[name]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return ep, nil
}

// Endpoints returns every endpoint in catalog order.
func (c *Catalog) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.endpoints[name])
	}
	return out
}

// Browsable returns endpoints that can be listed without a parent, which is
// what the navigation menu shows.
func (c *Catalog) Browsable() []Endpoint {
	var out []Endpoint
	for _, ep := range c.Endpoints() {
		if ep.Parent == "" {
			out = append(out, ep)
		}
	}
	return out
}

// Children returns endpoints listed beneath parent.
func (c *Catalog) Children(parent string) []Endpoint {
	var out []Endpoint
	for _, ep := range c.Endpoints() {
		if ep.Parent == parent {
			out = append(out, ep)
		}
	}
	return out
}
