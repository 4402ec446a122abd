package resource

import (
	"fmt"
	"strconv"

	"github.com/urbanmart/marketplace-admin/internal/domain/listing"
)

// Column is a listing column over decoded rows.
type Column = listing.Column[Row]

const dateLayout = "02 Jan 2006"

func seqColumn() Column {
	return Column{Key: "sno", Label: "S.No.", Render: func(rc listing.RowContext[Row]) listing.Cell {
		return listing.Cell{Text: strconv.Itoa(rc.Sequence())}
	}}
}

func textColumn(key, label string, paths ...string) Column {
	if len(paths) == 0 {
		paths = []string{key}
	}
	return Column{Key: key, Label: label, Render: func(rc listing.RowContext[Row]) listing.Cell {
		return listing.Cell{Text: rc.Row.First(paths...)}
	}}
}

func dateColumn(key, label, path string) Column {
	return Column{Key: key, Label: label, Render: func(rc listing.RowContext[Row]) listing.Cell {
		if t, ok := rc.Row.Time(path); ok {
			return listing.Cell{Text: t.Format(dateLayout)}
		}
		return listing.Cell{Text: rc.Row.String(path)}
	}}
}

func imageColumn(key, label string, paths ...string) Column {
	return Column{Key: key, Label: label, Render: func(rc listing.RowContext[Row]) listing.Cell {
		src := rc.Row.First(paths...)
		return listing.Cell{Text: src, ImageURL: src}
	}}
}

func moneyColumn(key, label, path string) Column {
	return Column{Key: key, Label: label, Render: func(rc listing.RowContext[Row]) listing.Cell {
		return listing.Cell{Text: FormatMoney(rc.Row, path)}
	}}
}

// FormatMoney renders an amount in rupees with two decimals.
func FormatMoney(r Row, path string) string {
	f, ok := r.Float(path)
	if !ok {
		return r.String(path)
	}
	return fmt.Sprintf("₹%.2f", f)
}

func toggleColumn(key, label, path, action string) Column {
	return Column{Key: key, Label: label, Render: func(rc listing.RowContext[Row]) listing.Cell {
		on := rc.Row.Active(path)
		text := "Inactive"
		tone := listing.ToneDanger
		if on {
			text, tone = "Active", listing.ToneSuccess
		}
		return listing.Cell{Text: text, Tone: tone, Toggle: &listing.Toggle{On: on, Action: action}}
	}}
}

// ItemCount sums orderItems[].quantity, counting items without a quantity as one.
func ItemCount(r Row) int {
	total := 0
	for _, it := range r.Items("orderItems") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if q, ok := ToFloat(m["quantity"]); ok {
			total += int(q)
			continue
		}
		total++
	}
	return total
}

var columnSets = map[string]func() []Column{
	"users": func() []Column {
		return []Column{
			seqColumn(),
			imageColumn("avatar", "Photo", "profile_img"),
			textColumn("name", "Name"),
			textColumn("email", "Email"),
			textColumn("phone", "Phone", "mobile", "phone"),
		}
	},
	"vendors": func() []Column {
		return []Column{
			seqColumn(),
			imageColumn("avatar", "Photo", "img_url"),
			textColumn("name", "Name"),
			textColumn("email", "Email"),
			textColumn("mobile", "Mobile", "p_mobile"),
			textColumn("gender", "Gender"),
			{Key: "status", Label: "Status", Render: func(rc listing.RowContext[Row]) listing.Cell {
				status := rc.Row.String("status")
				tone := listing.ToneDanger
				if rc.Row.Active("status") {
					tone = listing.ToneSuccess
				}
				return listing.Cell{Text: status, Tone: tone}
			}},
		}
	},
	"vendor-orders": func() []Column {
		return []Column{
			seqColumn(),
			textColumn("order", "Order", "order.razorpay_order_id", "order.id"),
			textColumn("customer", "Customer", "user.name"),
			textColumn("mobile", "Mobile", "user.mobile"),
			moneyColumn("amount", "Amount", "order.total_amount"),
			{Key: "job", Label: "Job Status", Render: func(rc listing.RowContext[Row]) listing.Cell {
				code, ok := rc.Row.Int("status")
				return listing.Cell{Text: VendorJobStatus(code, ok)}
			}},
		}
	},
	"orders": func() []Column {
		return []Column{
			textColumn("id", "Order ID"),
			textColumn("customer", "Customer", "user.name"),
			dateColumn("date", "Date", "createdAt"),
			{Key: "payment", Label: "Payment", Render: func(rc listing.RowContext[Row]) listing.Cell {
				s := rc.Row.String("orderStatus")
				return listing.Cell{Text: s, Tone: PaymentTone(s)}
			}},
			{Key: "status", Label: "Status", Render: func(rc listing.RowContext[Row]) listing.Cell {
				p := OrderStatus(rc.Row.String("status"))
				return listing.Cell{Text: p.Label, Tone: p.Tone, Progress: p.Progress, HasProgress: true}
			}},
			moneyColumn("amount", "Amount", "totalAmount"),
			{Key: "items", Label: "Items", Render: func(rc listing.RowContext[Row]) listing.Cell {
				return listing.Cell{Text: strconv.Itoa(ItemCount(rc.Row))}
			}},
		}
	},
	"transactions": func() []Column {
		return []Column{
			seqColumn(),
			textColumn("order", "Order", "order_id"),
			moneyColumn("amount", "Amount", "amount"),
			textColumn("payment", "Payment ID", "payment_id"),
			textColumn("product", "Product ID", "product_id"),
			{Key: "status", Label: "Status", Render: func(rc listing.RowContext[Row]) listing.Cell {
				s := rc.Row.String("status")
				return listing.Cell{Text: s, Tone: PaymentTone(s)}
			}},
			dateColumn("date", "Date", "createdAt"),
		}
	},
	"banners": func() []Column {
		return []Column{
			seqColumn(),
			imageColumn("image", "Image", "imgUrl"),
			textColumn("title", "Title"),
			textColumn("type", "Type"),
		}
	},
	"categories": func() []Column {
		return []Column{
			seqColumn(),
			imageColumn("image", "Image", "imgUrl"),
			textColumn("name", "Name"),
			textColumn("description", "Description"),
			toggleColumn("status", "Status", "status", "status"),
		}
	},
	"sub-categories": func() []Column {
		return []Column{
			seqColumn(),
			imageColumn("image", "Image", "imgUrl"),
			textColumn("name", "Name"),
			textColumn("category", "Main Category", "mainCategory.name", "mainCategoryId"),
			toggleColumn("status", "Status", "status", "status"),
		}
	},
	"products": func() []Column {
		return []Column{
			seqColumn(),
			textColumn("name", "Name"),
			textColumn("category", "Category", "mainCategory.name", "mainCategoryId"),
			moneyColumn("price", "Price", "variants.0.price"),
			textColumn("stock", "Stock", "variants.0.stock"),
		}
	},
	"queries": func() []Column {
		return []Column{
			seqColumn(),
			textColumn("name", "Name"),
			textColumn("email", "Email"),
			textColumn("subject", "Subject"),
			textColumn("message", "Message"),
			dateColumn("date", "Date", "createdAt"),
		}
	},
}

// Columns returns the listing columns for a resource. Unknown resources get
// a sequence number, the id and a name.
func Columns(name string) []Column {
	if build, ok := columnSets[name]; ok {
		return build()
	}
	return []Column{seqColumn(), textColumn("id", "ID"), textColumn("name", "Name", "name", "title")}
}

// RowID returns the id extractor for ep.
func RowID(ep Endpoint) func(Row) string {
	return func(r Row) string { return r.ID(ep.IDField) }
}
