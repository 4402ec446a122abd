package httpx

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/urbanmart/marketplace-admin/internal/domain/model"
	"github.com/urbanmart/marketplace-admin/internal/service"
)

// settingsField is one input on the settings form. Name matches the
// marketplace JSON key so validation errors map straight onto inputs.
type settingsField struct {
	Name   string
	Label  string
	Value  string
	Suffix string
}

func settingsFields(s model.Settings) []settingsField {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []settingsField{
		{Name: "vendorCommission", Label: "Vendor commission", Value: f(s.VendorCommission), Suffix: "%"},
		{Name: "plateformfee", Label: "Platform fee", Value: f(s.PlatformFee), Suffix: "₹"},
		{Name: "gst", Label: "GST", Value: f(s.GST), Suffix: "%"},
		{Name: "deliveryFee", Label: "Delivery fee", Value: f(s.DeliveryFee), Suffix: "₹"},
	}
}

// parseSettings reads the settings form. Unparseable numbers become NaN so
// validation reports them against their field.
func parseSettings(r *http.Request) (model.Settings, []settingsField) {
	num := func(name string) float64 {
		v := strings.TrimSpace(r.PostFormValue(name))
		if v == "" {
			return 0
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	}
	s := model.Settings{
		VendorCommission: num("vendorCommission"),
		PlatformFee:      num("plateformfee"),
		GST:              num("gst"),
		DeliveryFee:      num("deliveryFee"),
	}
	fields := settingsFields(s)
	for i := range fields {
		fields[i].Value = strings.TrimSpace(r.PostFormValue(fields[i].Name))
	}
	return s, fields
}

func settingsMeta() PageMeta {
	return PageMeta{Title: "Settings - Marketplace Admin", PageTitle: "Settings", CurrentPage: PageSettings}
}

// SettingsPage serves GET /settings.
func (h *UIHandlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	meta := settingsMeta()
	if h.Settings == nil {
		h.NotFound(w, r)
		return
	}
	s, err := h.Settings.Get(r.Context())
	if err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			PageMeta:   meta,
			Data:       map[string]any{"RetryURL": "/settings"},
			StatusCode: DetermineErrorStatus(err),
		})
		return
	}
	h.renderPage(w, r, h.NewTemplateData(r, meta).With("Fields", settingsFields(s)).Build())
}

// SettingsSave serves POST /settings.
func (h *UIHandlers) SettingsSave(w http.ResponseWriter, r *http.Request) {
	meta := settingsMeta()
	if h.Settings == nil {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s, fields := parseSettings(r)
	if err := h.Settings.Save(r.Context(), s); err != nil {
		if h.redirectOnAuth(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			FieldErrors: service.FieldErrors(err),
			PageMeta:    meta,
			Data:        map[string]any{"Fields": fields},
			ShowToast:   IsHTMX(r),
		})
		return
	}
	triggerToast(w, "Settings saved.", "success")
	h.renderPage(w, r, h.NewTemplateData(r, meta).
		With("Fields", settingsFields(s)).
		With("Saved", true).
		Build())
}
