package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// listFilterParams are the query parameters forwarded to list endpoints.
//
//nolint:gochecknoglobals // static read-only lookup
var listFilterParams = []string{"q", "status"}

// listFieldPrefix namespaces the list position in posted forms, so a
// mutation's own fields (a toggle's "status", say) never read as filters.
const listFieldPrefix = "list."

// listContext identifies one list screen: which page, under which parent,
// with which filters. Mutations carry it as hidden fields so the list they
// return to is the one the admin was looking at.
type listContext struct {
	Resource string
	Page     int
	Parent   string
	Filters  map[string]string
}

// listContextFrom reads the list position from a list URL's query.
func listContextFrom(name string, v url.Values) listContext {
	return readListContext(name, v, "")
}

// listContextFromForm reads the list position carried by a posted form's
// hidden fields. Unprefixed values belong to the mutation and are ignored.
func listContextFromForm(name string, form url.Values) listContext {
	return readListContext(name, form, listFieldPrefix)
}

func readListContext(name string, v url.Values, prefix string) listContext {
	get := func(k string) string { return strings.TrimSpace(v.Get(prefix + k)) }
	lc := listContext{Resource: name, Page: 1, Parent: get("parent")}
	if n, err := strconv.Atoi(get("page")); err == nil && n > 0 {
		lc.Page = n
	}
	for _, k := range listFilterParams {
		if s := get(k); s != "" {
			if lc.Filters == nil {
				lc.Filters = make(map[string]string)
			}
			lc.Filters[k] = s
		}
	}
	return lc
}

// Query is the url.Values form of the list position, page excluded.
func (lc listContext) Query() url.Values {
	q := url.Values{}
	if lc.Parent != "" {
		q.Set("parent", lc.Parent)
	}
	for k, v := range lc.Filters {
		q.Set(k, v)
	}
	return q
}

// BasePath is the list route without query.
func (lc listContext) BasePath() string { return "/r/" + lc.Resource }

// URL is the canonical link for the list at its current page.
func (lc listContext) URL() string {
	return pageURL(lc.BasePath(), lc.Query(), lc.Page)
}

// Hidden lists the hidden inputs that carry the position through a form
// post. listContextFromForm reads them back.
func (lc listContext) Hidden() map[string]string {
	out := map[string]string{listFieldPrefix + "page": strconv.Itoa(max(lc.Page, 1))}
	for k, v := range lc.Query() {
		out[listFieldPrefix+k] = v[0]
	}
	return out
}

func (lc listContext) viewQuery() service.ViewQuery {
	return service.ViewQuery{Page: lc.Page, Parent: lc.Parent, Filters: lc.Filters}
}

// rowAction is one button in a row's action column.
type rowAction struct {
	Label string
	URL   string
	// Post actions are submitted through a small inline form.
	Post    bool
	Danger  bool
	Confirm string
}

type listCell struct {
	listing.Cell
	// ToggleURL posts the status toggle; ToggleValue is the value it sends.
	ToggleURL   string
	ToggleValue string
}

type listRow struct {
	ID      string
	Cells   []listCell
	Actions []rowAction
}

// resourceListView is the template model of a resource list.
type resourceListView struct {
	Endpoint  resource.Endpoint
	Context   listContext
	Headers   []listing.Header
	Rows      []listRow
	State     listing.RequestState
	Search    string
	CanSearch bool
	CanCreate bool
	NewURL    string
	Children  []resource.Endpoint
	// NeedsCredential is set when the session has no API token, so nothing was fetched.
	NeedsCredential bool
	LoginURL        string
	HasActions      bool
}

// hiddenRowActions are rendered elsewhere: status is the toggle cell and the
// order actions live on the order page.
//
//nolint:gochecknoglobals // static read-only lookup
var hiddenRowActions = map[string]bool{"status": true, "item-status": true, "assign-vendor": true}

// actionInputs are the fields an action needs; those actions are offered as
// forms on the detail page instead of one-click row buttons.
//
//nolint:gochecknoglobals // static read-only lookup
var actionInputs = map[string][]resource.Field{
	"password": {{Name: "password", Label: "New password", Type: "password", Required: true}},
}

func buildListView(ep resource.Endpoint, lc listContext, view listing.View[resource.Row], children []resource.Endpoint) resourceListView {
	v := resourceListView{
		Endpoint:  ep,
		Context:   lc,
		Headers:   view.Table.Headers,
		State:     view.State,
		Search:    lc.Filters["q"],
		CanSearch: len(ep.List.Search) > 0,
		CanCreate: ep.CanCreate(),
		NewURL:    pageURL(lc.BasePath()+"/new", lc.Query(), lc.Page),
		Children:  children,
	}
	suffix := ""
	if enc := lc.Query().Encode(); enc != "" {
		suffix = "?" + enc
	}
	for _, tr := range view.Table.Rows {
		row := listRow{ID: tr.ID, Cells: make([]listCell, 0, len(tr.Cells))}
		base := lc.BasePath() + "/" + url.PathEscape(tr.ID)
		for _, c := range tr.Cells {
			lcell := listCell{Cell: c}
			if c.Toggle != nil && tr.ID != "" {
				lcell.ToggleURL = base + "/actions/" + url.PathEscape(c.Toggle.Action)
				lcell.ToggleValue = "1"
				if c.Toggle.On {
					lcell.ToggleValue = "0"
				}
			}
			row.Cells = append(row.Cells, lcell)
		}
		if tr.ID != "" {
			row.Actions = rowActions(ep, base, suffix, children)
		}
		v.HasActions = v.HasActions || len(row.Actions) > 0
		v.Rows = append(v.Rows, row)
	}
	return v
}

func rowActions(ep resource.Endpoint, base, suffix string, children []resource.Endpoint) []rowAction {
	var out []rowAction
	if ep.CanGet() {
		out = append(out, rowAction{Label: "View", URL: base})
	}
	for _, child := range children {
		id := strings.TrimPrefix(base, "/r/"+ep.Name+"/")
		out = append(out, rowAction{Label: child.Title, URL: "/r/" + child.Name + "?parent=" + id})
	}
	if ep.CanUpdate() {
		out = append(out, rowAction{Label: "Edit", URL: base + "/edit" + suffix})
	}
	for _, name := range ep.ActionNames() {
		if hiddenRowActions[name] || len(actionInputs[name]) > 0 {
			continue
		}
		spec, _ := ep.Action(name)
		label := spec.Label
		if label == "" {
			label = name
		}
		out = append(out, rowAction{Label: label, URL: base + "/actions/" + url.PathEscape(name), Post: true})
	}
	if ep.CanRemove() {
		out = append(out, rowAction{Label: "Delete", URL: base + "/delete" + suffix, Danger: true})
	}
	return out
}

// renderList writes the list screen for a controller that has been mounted
// or acted on. Notices from a row action are shown as a banner and, for htmx,
// a toast.
func (h *UIHandlers) renderList(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, lc listContext, ctrl *listing.Controller[resource.Row]) {
	view := ctrl.Snapshot()
	lc.Page = view.Page.Current

	v := buildListView(ep, lc, view, h.Resources.Catalog().Children(ep.Name))
	if view.State.IsIdle() {
		v.NeedsCredential = true
		v.LoginURL = "/auth/login?redirect_uri=" + url.QueryEscape(lc.URL())
	}

	builder := h.NewTemplateData(r, PageMeta{
		Title:       ep.Title + " - Marketplace Admin",
		PageTitle:   ep.Title,
		CurrentPage: PageResourceList,
	}).
		With("List", v).
		WithState(view.State, lc.URL()).
		WithNotice(view.Notice)
	if view.State.IsSuccess() {
		builder.WithPager(lc.BasePath(), lc.Query(), view.Window)
	}

	if IsHTMX(r) {
		resp := HTMX(w).PushURL(lc.URL())
		if n := view.Notice; n != nil {
			resp.Trigger("showToast", map[string]any{"message": n.Message, "type": string(n.Kind)})
		}
	}
	h.renderPage(w, r, builder.Build())
}
