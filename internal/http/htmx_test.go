package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWantsPartial(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{name: "plain request", want: false},
		{name: "htmx request", headers: map[string]string{"Hx-Request": "true"}, want: true},
		{name: "boosted navigation", headers: map[string]string{"Hx-Request": "true", "Hx-Boosted": "true"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, WantsPartial(r))
		})
	}
}

func TestHTMXResponse(t *testing.T) {
	w := httptest.NewRecorder()
	HTMX(w).
		Trigger("showToast", map[string]string{"message": "Saved", "type": "success"}).
		PushURL("/r/orders?page=2").
		NoSwap()

	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("Hx-Trigger")), &payload))
	assert.Equal(t, "Saved", payload["showToast"]["message"])
	assert.Equal(t, "/r/orders?page=2", w.Header().Get("Hx-Push-Url"))
	assert.Equal(t, "none", w.Header().Get("Hx-Reswap"))

	w = httptest.NewRecorder()
	HTMX(w).Redirect("/auth/signed-out")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/auth/signed-out", w.Header().Get("Hx-Redirect"))
}

func TestSetHXTrigger_DefaultsToTrue(t *testing.T) {
	w := httptest.NewRecorder()
	SetHXTrigger(w, "list:refresh", nil)
	assert.JSONEq(t, `{"list:refresh":true}`, w.Header().Get("Hx-Trigger"))
}

func TestSetHXTrigger_MergesEvents(t *testing.T) {
	w := httptest.NewRecorder()
	SetHXTrigger(w, "showToast", map[string]string{"message": "Deleted", "type": "success"})
	SetHXTrigger(w, "nav:activate", map[string]string{"path": "/r/banners"})

	var events map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("Hx-Trigger")), &events))
	assert.Equal(t, "Deleted", events["showToast"]["message"])
	assert.Equal(t, "/r/banners", events["nav:activate"]["path"])
}
