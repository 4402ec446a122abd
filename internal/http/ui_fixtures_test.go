package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/urbanmart/marketplace-admin/internal/adapters/tokens"
	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/mocks"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

const (
	testSessionID = "sess-1"
	testCSRF      = "csrf-test-token"
)

// fakeAuth serves one fixed session.
type fakeAuth struct {
	session   *domainauth.Session
	loggedOut []string
	beginErr  error
}

func (f *fakeAuth) BeginLogin(_ context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/authorize?redirect=" + url.QueryEscape(redirectURL),
		State:   "state-1",
		Nonce:   "nonce-1",
	}, nil
}

func (f *fakeAuth) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	if in.Code != "good" {
		return nil, errors.New("exchange failed")
	}
	return &service.CompleteLoginResult{Session: *f.session}, nil
}

func (f *fakeAuth) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	if f.session == nil || id != f.session.ID {
		return nil, errors.New("session not found")
	}
	s := *f.session
	return &s, nil
}

func (f *fakeAuth) Logout(_ context.Context, id string) error {
	f.loggedOut = append(f.loggedOut, id)
	return nil
}

func adminSession(apiToken string) *domainauth.Session {
	return &domainauth.Session{
		ID:        testSessionID,
		UserID:    "ops",
		Email:     "ops@example.com",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
		APIToken:  apiToken,
	}
}

// consoleFixture is a router over a real ResourceService backed by mocks.
type consoleFixture struct {
	client *mocks.MockResourceClient
	api    *mocks.MockMarketplaceAPI
	audit  *mocks.MockAuditRecorder
	auth   *fakeAuth
	router http.Handler
}

type fixtureOption func(*RouterServices, *consoleFixture)

func withAuditReader(reader *mocks.MockAuditReader) fixtureOption {
	return func(s *RouterServices, _ *consoleFixture) {
		s.Audit = service.NewAuditService(service.AuditServiceOptions{Reader: reader, PageSize: 2})
	}
}

func newConsoleFixture(t *testing.T, session *domainauth.Session, opts ...fixtureOption) *consoleFixture {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); err != nil {
		t.Skip("templates not available")
	}
	ctrl := gomock.NewController(t)
	f := &consoleFixture{
		client: mocks.NewMockResourceClient(ctrl),
		api:    mocks.NewMockMarketplaceAPI(ctrl),
		audit:  mocks.NewMockAuditRecorder(ctrl),
		auth:   &fakeAuth{session: session},
	}
	// Mutations are audited; tests assert on the upstream calls instead.
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	services := RouterServices{
		Resources: service.NewResourceService(service.ResourceServiceOptions{
			Client:  f.client,
			Catalog: resource.MustDefaultCatalog(),
			Tokens:  tokens.Session{},
			Audit:   f.audit,
		}),
		Orders:     nil,
		Dashboard:  service.NewDashboardService(service.DashboardServiceOptions{API: f.api, Client: f.client}),
		Settings:   service.NewSettingsService(service.SettingsServiceOptions{API: f.api, Audit: f.audit}),
		Audit:      service.NewAuditService(service.AuditServiceOptions{}),
		Auth:       f.auth,
		TemplateFS: os.DirFS(TemplatePathFromTest),
	}
	services.Orders = service.NewOrderService(service.OrderServiceOptions{Resources: services.Resources})
	for _, o := range opts {
		o(&services, f)
	}
	f.router = NewRouter(services)
	return f
}

// get issues a signed-in GET.
func (f *consoleFixture) get(t *testing.T, target string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
	if htmx {
		req.Header.Set("Hx-Request", "true")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// post issues a signed-in POST carrying a valid CSRF pair.
func (f *consoleFixture) post(t *testing.T, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
	req.Header.Set(DefaultCSRFHeaderName, testCSRF)
	if htmx {
		req.Header.Set("Hx-Request", "true")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func parseDoc(t *testing.T, body io.Reader) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(body)
	require.NoError(t, err)
	return doc
}

func categoryRows(n int) []resource.Row {
	rows := make([]resource.Row, n)
	for i := range rows {
		rows[i] = resource.Row{
			"id":     "cat-" + string(rune('a'+i)),
			"name":   "Category " + string(rune('A'+i)),
			"status": true,
		}
	}
	return rows
}

func newFormRequest(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
