package resource

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	orders, err := cat.Lookup("orders")
	require.NoError(t, err)
	assert.Equal(t, "/admin/get-all-orders", orders.List.Path)
	assert.Equal(t, "data", orders.List.RowsPath)
	assert.Equal(t, "pagination.total_pages", orders.List.TotalPagesPath)
	assert.Equal(t, 10, orders.PageSize)
	assert.Equal(t, "id", orders.IDField)
	assert.Equal(t, http.MethodDelete, orders.Remove.Method)
	assert.Equal(t, EncodingNone, orders.Remove.Encoding)
	assert.Equal(t, []string{"assign-vendor", "item-status", "status"}, orders.ActionNames())

	status, ok := orders.Action("status")
	require.True(t, ok)
	assert.Equal(t, http.MethodPut, status.Method)
	assert.Equal(t, EncodingJSON, status.Encoding)
	assert.Equal(t, "order_id", status.IDParam)

	banners, err := cat.Lookup("banners")
	require.NoError(t, err)
	assert.Equal(t, DefaultTotalPagesPath, banners.List.TotalPagesPath)
	assert.Equal(t, EncodingMultipart, banners.Create.Encoding)
	assert.True(t, banners.CanCreate())
	assert.False(t, banners.CanGet())

	queries, err := cat.Lookup("queries")
	require.NoError(t, err)
	assert.True(t, queries.ReadOnly())
	assert.Contains(t, queries.List.Search, "subject")

	for _, ep := range cat.Browsable() {
		assert.Empty(t, ep.Parent, ep.Name)
	}
	children := cat.Children("vendors")
	require.Len(t, children, 1)
	assert.Equal(t, "vendor-orders", children[0].Name)
}

func TestCatalog_LookupUnknown(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	_, err = cat.Lookup("widgets")
	require.ErrorIs(t, err, ErrUnknownResource)
}

func TestLoadCatalog_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing list path",
			doc:     "resources:\n  - name: a\n",
			wantErr: "list path is required",
		},
		{
			name:    "duplicate",
			doc:     "resources:\n  - {name: a, list: {path: /a}}\n  - {name: a, list: {path: /b}}\n",
			wantErr: "duplicate name",
		},
		{
			name:    "bad expression",
			doc:     "resources:\n  - {name: a, list: {path: /a, rows: 'data[['}}\n",
			wantErr: "invalid expression",
		},
		{
			name:    "unknown encoding",
			doc:     "resources:\n  - {name: a, list: {path: /a}, create: {path: /a, encoding: xml}}\n",
			wantErr: "unknown encoding",
		},
		{
			name:    "remove without id",
			doc:     "resources:\n  - {name: a, list: {path: /a}, remove: {path: /a}}\n",
			wantErr: "does not address a row",
		},
		{
			name:    "parent placeholder without parent",
			doc:     "resources:\n  - {name: a, list: {path: '/a/{parent}'}}\n",
			wantErr: "no parent is set",
		},
		{
			name:    "unknown parent",
			doc:     "resources:\n  - {name: a, parent: b, list: {path: '/a/{parent}'}}\n",
			wantErr: "unknown parent",
		},
		{
			name:    "unknown field",
			doc:     "resources:\n  - {name: a, colour: red, list: {path: /a}}\n",
			wantErr: "decode catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEndpoint_ListPath(t *testing.T) {
	ep := Endpoint{Name: "vendor-orders", List: ListSpec{Path: "/admin/all-vendor-cart-items/{parent}"}}

	_, err := ep.ListPath("")
	require.Error(t, err)

	path, err := ep.ListPath("v 1")
	require.NoError(t, err)
	assert.Equal(t, "/admin/all-vendor-cart-items/v%201", path)

	assert.Equal(t, "/admin/delete-vendor/a%2Fb", ExpandPath("/admin/delete-vendor/{id}", "a/b"))
}

func TestLoadCatalogFile_EmptyPathUsesEmbedded(t *testing.T) {
	cat, err := LoadCatalogFile("  ")
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Endpoints())

	_, err = LoadCatalogFile("/nonexistent/catalog.yaml")
	require.Error(t, err)
}
