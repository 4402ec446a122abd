package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageDashboard      = "dashboard"
	PageResourceList   = "resource-list"
	PageResourceDetail = "resource-detail"
	PageResourceForm   = "resource-form"
	PageResourceDelete = "resource-delete"
	PageOrder          = "order"
	PageSettings       = "settings"
	PageAudit          = "audit"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	FormModeEdit   FormMode = "edit"
	FormModeCreate FormMode = "create"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageDashboard:      "dashboard-content",
	PageResourceList:   "resource-list-content",
	PageResourceDetail: "resource-detail-content",
	PageResourceForm:   "resource-form-content",
	PageResourceDelete: "resource-delete-content",
	PageOrder:          "order-content",
	PageSettings:       "settings-content",
	PageAudit:          "audit-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
