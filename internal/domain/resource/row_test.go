package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
)

func decodeRow(t *testing.T, s string) Row {
	t.Helper()
	var r Row
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestRow_Accessors(t *testing.T) {
	r := decodeRow(t, `{
		"id": 42,
		"user": {"name": "Asha"},
		"totalAmount": "1499.5",
		"createdAt": "2024-03-05T10:00:00.000Z",
		"orderItems": [{"quantity": 2}, {"quantity": 3}, {}],
		"status": 1
	}`)

	assert.Equal(t, "42", r.ID(""))
	assert.Equal(t, "Asha", r.String("user.name"))
	assert.Equal(t, "", r.String("user.email"))
	f, ok := r.Float("totalAmount")
	require.True(t, ok)
	assert.InDelta(t, 1499.5, f, 0.001)
	n, ok := r.Int("orderItems.1.quantity")
	require.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = r.Lookup("orderItems.9")
	assert.False(t, ok)
	ts, ok := r.Time("createdAt")
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, 6, ItemCount(r))
	assert.True(t, r.Active("status"))
	assert.Equal(t, "₹1499.50", FormatMoney(r, "totalAmount"))
	assert.Equal(t, "Asha", r.First("user.fullName", "user.name"))
}

func TestMatchRows(t *testing.T) {
	rows := []Row{
		{"name": "Ravi", "subject": "Refund"},
		{"name": "Meena", "subject": "Delivery delay"},
	}

	assert.Len(t, MatchRows(rows, "", []string{"name"}), 2)
	got := MatchRows(rows, "DELAY", []string{"name", "subject"})
	require.Len(t, got, 1)
	assert.Equal(t, "Meena", got[0].String("name"))
}

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		status   string
		label    string
		progress int
	}{
		{"CONFIRMED", "Order Confirmed", 25},
		{"PENDING", "Order Pending", 0},
		{"PROCESSING", "Processing", 50},
		{"SHIPPED", "Shipped", 75},
		{"DELIVERED", "Delivered", 100},
		{"CANCELLED", "Cancelled", 0},
		{"LOST", "Unknown", 0},
	}
	for _, tt := range tests {
		p := OrderStatus(tt.status)
		assert.Equal(t, tt.label, p.Label, tt.status)
		assert.Equal(t, tt.progress, p.Progress, tt.status)
	}

	assert.Equal(t, "Partner Assigned", VendorJobStatus(1, true))
	assert.Equal(t, "Completed", VendorJobStatus(4, true))
	assert.Equal(t, "Pending", VendorJobStatus(5, true))
	assert.Equal(t, "Pending", VendorJobStatus(0, false))
	assert.Equal(t, listing.ToneDanger, PaymentTone("FAILED"))
	assert.Equal(t, "Shipped", OptionLabel(OrderItemStatuses, "SHIPPED"))
	assert.Equal(t, "N/A", OptionLabel(OrderItemStatuses, ""))
}

func TestColumns_VendorSequenceAcrossPages(t *testing.T) {
	rows := []Row{{"id": "v1", "name": "A", "status": "ACTIVE"}, {"id": "v2", "name": "B", "status": "BLOCKED"}}
	table := listing.RenderTable(rows, listing.TableSpec[Row]{
		Columns:  Columns("vendors"),
		RowID:    RowID(Endpoint{IDField: "id"}),
		Page:     3,
		PageSize: 10,
	})

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "21", table.Rows[0].Cells[0].Text)
	assert.Equal(t, "22", table.Rows[1].Cells[0].Text)
	assert.Equal(t, "v2", table.Rows[1].ID)

	status := table.Rows[0].Cells[len(table.Rows[0].Cells)-1]
	assert.Equal(t, listing.ToneSuccess, status.Tone)
	assert.Equal(t, listing.ToneDanger, table.Rows[1].Cells[len(table.Rows[1].Cells)-1].Tone)
}

func TestColumns_Fallback(t *testing.T) {
	cols := Columns("widgets")
	require.Len(t, cols, 3)
	assert.Equal(t, "id", cols[1].Key)
}
