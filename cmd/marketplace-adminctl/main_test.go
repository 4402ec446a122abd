package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/mocks"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The lookup cache's expiry janitor runs for the life of the process.
		goleak.IgnoreAnyFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
	)
}

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) { return string(s), s != "" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestContext wires a command context whose resource service talks to a
// mocked marketplace client.
func newTestContext(t *testing.T, token string) (*commandContext, *mocks.MockResourceClient, *bytes.Buffer) {
	t.Helper()
	client := mocks.NewMockResourceClient(gomock.NewController(t))
	out := &bytes.Buffer{}
	svc := service.NewResourceService(service.ResourceServiceOptions{
		Client:  client,
		Catalog: resource.MustDefaultCatalog(),
		Tokens:  staticToken(token),
		Logger:  discardLogger(),
	})
	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: discardLogger(),
		Out:    out,
		resources: func(*commandContext) (*service.ResourceService, func(), error) {
			return svc, func() {}, nil
		},
	}
	return cmdCtx, client, out
}

func categories() []resource.Row {
	return []resource.Row{
		{"id": "c1", "name": "Groceries", "description": "Daily needs", "status": true},
		{"id": "c2", "name": "Bakery", "description": "Fresh\tbread", "status": false},
	}
}

func TestPositional(t *testing.T) {
	t.Parallel()

	pos, rest, err := positional([]string{"orders", "-page", "2"}, 1, "list <resource>")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, pos)
	assert.Equal(t, []string{"-page", "2"}, rest)

	_, _, err = positional([]string{"-page", "2"}, 1, "list <resource>")
	require.EqualError(t, err, "usage: list <resource>")

	_, _, err = positional([]string{"orders"}, 2, "get <resource> <id>")
	require.Error(t, err)
}

func TestParseListFlags(t *testing.T) {
	t.Parallel()

	opts, err := parseListFlags("list", []string{"-page", "3", "-q", "tea", "-filter", "status=active", "-filter", "vendor=v1"})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, map[string]string{"q": "tea", "status": "active", "vendor": "v1"}, map[string]string(opts.Filters))
	assert.Equal(t, defaultRequestTimeout, opts.Timeout)

	_, err = parseListFlags("list", []string{"-page", "0"})
	require.Error(t, err)

	_, err = parseListFlags("list", []string{"-filter", "novalue"})
	require.Error(t, err)
}

func TestRunResources(t *testing.T) {
	t.Parallel()
	cmdCtx, _, out := newTestContext(t, "tok")

	require.NoError(t, runResources(cmdCtx, nil))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "categories")
	assert.Contains(t, out.String(), "Main Categories")
}

func TestRunList(t *testing.T) {
	t.Parallel()
	cmdCtx, client, out := newTestContext(t, "tok")

	client.EXPECT().
		List(gomock.Any(), "categories", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, q resource.ListQuery) (resource.Collection, error) {
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, map[string]string{"q": "bread"}, q.Filters)
			return resource.Collection{Rows: categories(), TotalPages: 4}, nil
		})

	require.NoError(t, runList(cmdCtx, []string{"categories", "-page", "2", "-q", "bread"}))

	got := out.String()
	assert.Contains(t, got, "ID")
	assert.Contains(t, got, "NAME")
	assert.Contains(t, got, "Groceries")
	assert.Contains(t, got, "Fresh bread")
	assert.Contains(t, got, "Page 2 of 4")
}

func TestRunList_Empty(t *testing.T) {
	t.Parallel()
	cmdCtx, client, out := newTestContext(t, "tok")

	client.EXPECT().
		List(gomock.Any(), "categories", gomock.Any()).
		Return(resource.Collection{TotalPages: 1}, nil)

	require.NoError(t, runList(cmdCtx, []string{"categories"}))
	assert.Contains(t, out.String(), "No records found.")
}

func TestRunList_WithoutTokenSkipsRequest(t *testing.T) {
	t.Parallel()
	cmdCtx, _, out := newTestContext(t, "")

	err := runList(cmdCtx, []string{"categories"})
	require.EqualError(t, err, "no API token: set MARKETPLACE_API_TOKEN")
	assert.Empty(t, out.String())
}

func TestRunList_UnknownResource(t *testing.T) {
	t.Parallel()
	cmdCtx, _, _ := newTestContext(t, "tok")

	require.Error(t, runList(cmdCtx, []string{"widgets"}))
}

func TestRunGet(t *testing.T) {
	t.Parallel()
	cmdCtx, client, out := newTestContext(t, "tok")

	client.EXPECT().
		Get(gomock.Any(), "categories", "c1").
		Return(categories()[0], nil)

	require.NoError(t, runGet(cmdCtx, []string{"categories", "c1"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Groceries", got["name"])
}

func TestRunDelete_RequiresYes(t *testing.T) {
	t.Parallel()
	cmdCtx, _, out := newTestContext(t, "tok")

	// No Remove expectation: the mock fails the test if one is issued.
	err := runDelete(cmdCtx, []string{"categories", "c1"})
	require.EqualError(t, err, "refusing to delete categories c1 without -yes")
	assert.Empty(t, out.String())
}

func TestRunDelete_Confirmed(t *testing.T) {
	t.Parallel()
	cmdCtx, client, out := newTestContext(t, "tok")

	gomock.InOrder(
		client.EXPECT().Remove(gomock.Any(), "categories", "c1").Return(nil),
		client.EXPECT().
			List(gomock.Any(), "categories", gomock.Any()).
			Return(resource.Collection{Rows: categories()[1:], TotalPages: 1}, nil),
	)

	require.NoError(t, runDelete(cmdCtx, []string{"categories", "c1", "-yes"}))
	assert.Equal(t, "Category deleted successfully! (categories c1)\n", out.String())
}

func TestRunDelete_NotSupported(t *testing.T) {
	t.Parallel()
	cmdCtx, _, _ := newTestContext(t, "tok")

	err := runDelete(cmdCtx, []string{"transactions", "t1", "-yes"})
	require.EqualError(t, err, "transactions rows cannot be deleted")
}

func TestPrintUsageListsEveryCommand(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), name)
	}
}

func TestParseMigrateFlags(t *testing.T) {
	t.Parallel()

	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, migrateOptions{Timeout: defaultMigrationTimeout}, opts)

	opts, err = parseMigrateFlags([]string{"-status", "-timeout", "5s"})
	require.NoError(t, err)
	assert.True(t, opts.Status)
	assert.Equal(t, 5*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"-timeout", "0s"})
	require.Error(t, err)
}
