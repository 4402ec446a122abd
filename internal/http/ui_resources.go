package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
	apperrors "github.com/urbanmart/marketplace-admin/internal/errors"
)

// ordersResource has a dedicated detail page.
const ordersResource = "orders"

// endpointFor resolves {resource}; unknown names render the not-found page.
func (h *UIHandlers) endpointFor(w http.ResponseWriter, r *http.Request) (resource.Endpoint, bool) {
	if h.Resources == nil {
		h.NotFound(w, r)
		return resource.Endpoint{}, false
	}
	ep, err := h.Resources.Endpoint(r.PathValue("resource"))
	if err != nil {
		h.NotFound(w, r)
		return resource.Endpoint{}, false
	}
	return ep, true
}

// ResourceList serves GET /r/{resource}.
func (h *UIHandlers) ResourceList(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	lc := listContextFrom(ep.Name, r.URL.Query())
	ctrl, err := h.Resources.NewListView(ep.Name, lc.viewQuery())
	if err != nil {
		h.NotFound(w, r)
		return
	}
	defer ctrl.Close()

	// Failures other than a rejected credential are folded into the error
	// state; a missing credential leaves the view idle.
	if err := ctrl.Mount(r.Context()); h.redirectOnAuth(w, r, err) {
		return
	}
	h.renderList(w, r, ep, lc, ctrl)
}

// listActionResult tells apart a failed mutation from a failed refetch.
type listActionResult struct {
	ctrl        *listing.Controller[resource.Row]
	mutationErr error
	err         error
}

// actOnList runs a through a fresh controller positioned at lc, so a
// successful mutation is followed by a refetch of that page.
func (h *UIHandlers) actOnList(ctx context.Context, ep resource.Endpoint, lc listContext, a listing.Action) (listActionResult, error) {
	ctrl, err := h.Resources.NewListView(ep.Name, lc.viewQuery())
	if err != nil {
		return listActionResult{}, err
	}
	res := listActionResult{ctrl: ctrl}
	run := a.Run
	a.Run = func(ctx context.Context) error {
		res.mutationErr = run(ctx)
		return res.mutationErr
	}
	res.err = ctrl.Act(ctx, a)
	return res, nil
}

// finishListAction renders the outcome of a row action on the list.
func (h *UIHandlers) finishListAction(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, lc listContext, res listActionResult) {
	ctrl := res.ctrl
	switch {
	case res.err == nil:
		h.renderList(w, r, ep, lc, ctrl)
	case errors.Is(res.err, listing.ErrConfirmationRequired):
		h.renderDeleteConfirm(w, r, ep, lc, r.PathValue("id"))
	case isNoCredential(res.err):
		redirectToLogin(w, r)
	case h.redirectOnAuth(w, r, res.err):
	case res.mutationErr != nil && IsHTMX(r):
		// The collection is untouched; leave the page as it is.
		HTMX(w).NoSwap()
		triggerToast(w, apperrors.UserMessage(res.mutationErr), "error")
		w.WriteHeader(http.StatusOK)
	case res.mutationErr != nil:
		if err := ctrl.Mount(r.Context()); h.redirectOnAuth(w, r, err) {
			return
		}
		h.renderList(w, r, ep, lc, ctrl)
	default:
		// The mutation succeeded but the refetch failed; the error state says so.
		h.renderList(w, r, ep, lc, ctrl)
	}
}

// ResourceDeleteConfirm serves GET /r/{resource}/{id}/delete.
func (h *UIHandlers) ResourceDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanRemove() {
		h.NotFound(w, r)
		return
	}
	h.renderDeleteConfirm(w, r, ep, listContextFrom(ep.Name, r.URL.Query()), r.PathValue("id"))
}

func (h *UIHandlers) renderDeleteConfirm(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, lc listContext, id string) {
	data := h.NewTemplateData(r, PageMeta{
		Title:       "Delete " + ep.Title + " - Marketplace Admin",
		PageTitle:   "Delete from " + ep.Title,
		CurrentPage: PageResourceDelete,
	}).
		With("Endpoint", ep).
		With("ID", id).
		With("ActionURL", "/r/"+ep.Name+"/"+url.PathEscape(id)+"/delete").
		With("CancelURL", lc.URL()).
		With("Hidden", lc.Hidden()).
		Build()
	h.renderPage(w, r, data)
}

// ResourceDelete serves DELETE /r/{resource}/{id} and POST /r/{resource}/{id}/delete.
// Nothing is sent upstream unless confirm=yes accompanies the request.
func (h *UIHandlers) ResourceDelete(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanRemove() {
		h.NotFound(w, r)
		return
	}
	if err := parseAnyForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	lc := listContextFromForm(ep.Name, r.Form)
	confirmed := strings.EqualFold(r.FormValue("confirm"), "yes")

	res, err := h.actOnList(r.Context(), ep, lc, h.Resources.DeleteAction(ep.Name, id, confirmed))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	defer res.ctrl.Close()
	h.finishListAction(w, r, ep, lc, res)
}

// ResourceAction serves POST /r/{resource}/{id}/actions/{action}: status
// toggles and the endpoint's custom actions. Submitted form values other than
// the list position are sent as the action's fields.
func (h *UIHandlers) ResourceAction(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	name := r.PathValue("action")
	if _, ok := ep.Action(name); !ok {
		h.NotFound(w, r)
		return
	}
	if err := parseAnyForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	lc := listContextFromForm(ep.Name, r.Form)

	fields := actionFields(r.PostForm)
	for _, in := range actionInputs[name] {
		if in.Required && strings.TrimSpace(r.PostFormValue(in.Name)) == "" {
			h.renderActionInputError(w, r, ep, id, in)
			return
		}
	}

	res, err := h.actOnList(r.Context(), ep, lc, h.Resources.CustomAction(ep.Name, id, name, fields))
	if err != nil {
		h.NotFound(w, r)
		return
	}
	defer res.ctrl.Close()
	h.finishListAction(w, r, ep, lc, res)
}

// actionFields drops transport fields and the list position from a posted form.
func actionFields(form url.Values) map[string]any {
	skip := []string{"csrf_token", "confirm"}
	out := make(map[string]any)
	for k, v := range form {
		if len(v) == 0 || slices.Contains(skip, k) || strings.HasPrefix(k, listFieldPrefix) {
			continue
		}
		out[k] = strings.TrimSpace(v[0])
	}
	return out
}

func (h *UIHandlers) renderActionInputError(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, id string, in resource.Field) {
	msg := in.Label + " is required."
	if IsHTMX(r) {
		HTMX(w).NoSwap()
		triggerToast(w, msg, "error")
		w.WriteHeader(http.StatusOK)
		return
	}
	h.renderDetail(w, r, ep, id, msg)
}

// ResourceDetail serves GET /r/{resource}/{id}.
func (h *UIHandlers) ResourceDetail(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if ep.Name == ordersResource && h.Orders != nil {
		h.OrderDetail(w, r)
		return
	}
	if !ep.CanGet() {
		h.NotFound(w, r)
		return
	}
	h.renderDetail(w, r, ep, r.PathValue("id"), "")
}

// detailField is one key/value line of the detail page.
type detailField struct {
	Key   string
	Value string
	Image bool
}

// detailAction is a custom action that needs input, offered as a form.
type detailAction struct {
	Name      string
	Label     string
	ActionURL string
	Fields    []resource.Field
}

func (h *UIHandlers) renderDetail(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, id, banner string) {
	row, err := h.Resources.Get(r.Context(), ep.Name, id)
	if err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta:   PageMeta{Title: ep.Title + " - Marketplace Admin", PageTitle: ep.Title, CurrentPage: PageResourceDetail},
			Data:       map[string]any{"Endpoint": ep, "ID": id, "BackURL": "/r/" + ep.Name, "RetryURL": r.URL.RequestURI()},
			StatusCode: DetermineErrorStatus(err),
		})
		return
	}

	var actions []detailAction
	for _, name := range ep.ActionNames() {
		inputs := actionInputs[name]
		if len(inputs) == 0 {
			continue
		}
		spec, _ := ep.Action(name)
		actions = append(actions, detailAction{
			Name: name, Label: spec.Label, Fields: inputs,
			ActionURL: "/r/" + ep.Name + "/" + url.PathEscape(id) + "/actions/" + url.PathEscape(name),
		})
	}

	builder := h.NewTemplateData(r, PageMeta{
		Title:       ep.Title + " - Marketplace Admin",
		PageTitle:   ep.Title,
		CurrentPage: PageResourceDetail,
	}).
		With("Endpoint", ep).
		With("ID", id).
		With("Fields", detailFields(row)).
		With("Actions", actions).
		With("BackURL", "/r/"+ep.Name).
		With("Children", h.Resources.Catalog().Children(ep.Name))
	if ep.CanUpdate() {
		builder.With("EditURL", "/r/"+ep.Name+"/"+url.PathEscape(id)+"/edit")
	}
	if banner != "" {
		builder.WithError(banner)
	}
	h.renderPage(w, r, builder.Build())
}

// detailFields flattens the scalar top-level values of row, sorted by key.
// Nested objects are shown as JSON; image URLs are rendered as images.
func detailFields(row resource.Row) []detailField {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]detailField, 0, len(keys))
	for _, k := range keys {
		v := resource.Stringify(row[k])
		if v == "" || strings.Contains(strings.ToLower(k), "password") {
			continue
		}
		out = append(out, detailField{Key: k, Value: v, Image: isImageField(k, v)})
	}
	return out
}

func isImageField(key, value string) bool {
	k := strings.ToLower(key)
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return false
	}
	return strings.Contains(k, "img") || strings.Contains(k, "image") || strings.Contains(k, "photo")
}

// ResourceNew serves GET /r/{resource}/new.
func (h *UIHandlers) ResourceNew(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanCreate() {
		h.NotFound(w, r)
		return
	}
	h.renderForm(w, r, formRender{Endpoint: ep, Mode: FormModeCreate, List: listContextFrom(ep.Name, r.URL.Query())})
}

// ResourceEdit serves GET /r/{resource}/{id}/edit. Endpoints with a get
// request are prefilled from it; otherwise only the id is known.
func (h *UIHandlers) ResourceEdit(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanUpdate() {
		h.NotFound(w, r)
		return
	}
	id := r.PathValue("id")
	fr := formRender{Endpoint: ep, Mode: FormModeEdit, ID: id, List: listContextFrom(ep.Name, r.URL.Query())}
	if ep.CanGet() {
		row, err := h.Resources.Get(r.Context(), ep.Name, id)
		if err != nil {
			if h.redirectOnAuth(w, r, err) {
				return
			}
			fr.Err = err
		}
		fr.Row = row
	}
	h.renderForm(w, r, fr)
}

// ResourceCreate serves POST /r/{resource}.
func (h *UIHandlers) ResourceCreate(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanCreate() {
		h.NotFound(w, r)
		return
	}
	h.submitForm(w, r, ep, FormModeCreate, "")
}

// ResourceUpdate serves POST /r/{resource}/{id}.
func (h *UIHandlers) ResourceUpdate(w http.ResponseWriter, r *http.Request) {
	ep, ok := h.endpointFor(w, r)
	if !ok {
		return
	}
	if !ep.CanUpdate() {
		h.NotFound(w, r)
		return
	}
	h.submitForm(w, r, ep, FormModeEdit, r.PathValue("id"))
}

// submitForm validates the form, runs the create or update as a list action
// and, on success, shows the refetched list.
func (h *UIHandlers) submitForm(w http.ResponseWriter, r *http.Request, ep resource.Endpoint, mode FormMode, id string) {
	payload, fieldErrs, err := parseResourceForm(r, ep, mode)
	lc := listContextFromForm(ep.Name, r.Form)
	fr := formRender{Endpoint: ep, Mode: mode, ID: id, List: lc, FromRequest: true}
	if err != nil || len(fieldErrs) > 0 {
		fr.Err, fr.FieldErrors = err, fieldErrs
		h.renderForm(w, r, fr)
		return
	}

	action := listing.Action{Kind: listing.ActionEdit, ID: id}
	if mode == FormModeCreate {
		action.Success = ep.Create.Success
		action.Run = func(ctx context.Context) error {
			_, err := h.Resources.Create(ctx, ep.Name, payload)
			return err
		}
	} else {
		action.Success = ep.Update.Success
		action.Run = func(ctx context.Context) error {
			return h.Resources.Update(ctx, ep.Name, id, payload)
		}
	}

	res, err := h.actOnList(r.Context(), ep, lc, action)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	defer res.ctrl.Close()

	switch {
	case isNoCredential(res.err):
		redirectToLogin(w, r)
	case h.redirectOnAuth(w, r, res.err):
	case res.mutationErr != nil:
		fr.Err = res.mutationErr
		fr.Toast = true
		h.renderForm(w, r, fr)
	default:
		h.renderList(w, r, ep, lc, res.ctrl)
	}
}

// formRender groups what renderForm needs.
type formRender struct {
	Endpoint    resource.Endpoint
	Mode        FormMode
	ID          string
	Row         resource.Row
	List        listContext
	Err         error
	FieldErrors map[string]string
	// FromRequest prefers submitted values over the fetched row.
	FromRequest bool
	Toast       bool
}

func (h *UIHandlers) renderForm(w http.ResponseWriter, r *http.Request, fr formRender) {
	ep := fr.Endpoint
	var req *http.Request
	if fr.FromRequest {
		req = r
	}
	fields, err := h.formFields(r.Context(), ep, rowValue(fr.Row, req))
	if err != nil && h.redirectOnAuth(w, r, err) {
		return
	}

	title := "New " + ep.Title
	actionURL := "/r/" + ep.Name
	if fr.Mode == FormModeEdit {
		title = "Edit " + ep.Title
		actionURL += "/" + url.PathEscape(fr.ID)
	}
	view := resourceFormView{
		Endpoint:  ep,
		Mode:      fr.Mode,
		ID:        fr.ID,
		ActionURL: actionURL,
		CancelURL: fr.List.URL(),
		Fields:    fields,
		Multipart: hasFileField(ep),
		Hidden:    fr.List.Hidden(),
	}

	h.RenderError(ErrorOpts{
		W: w, R: r,
		Err:         fr.Err,
		FieldErrors: fr.FieldErrors,
		PageMeta:    PageMeta{Title: title + " - Marketplace Admin", PageTitle: title, CurrentPage: PageResourceForm},
		Data:        map[string]any{"Form": view, "Mode": string(fr.Mode)},
		ShowToast:   fr.Toast && IsHTMX(r),
	})
}
