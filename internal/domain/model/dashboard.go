package model

// DashboardCounts are the headline numbers on the console landing page.
type DashboardCounts struct {
	Users             int `json:"userCount"`
	Vendors           int `json:"vendorCount"`
	UnverifiedVendors int `json:"unVerifiedVendorCount"`
	Orders            int `json:"orderCount"`
	Categories        int `json:"categoriesCount"`
	SubCategories     int `json:"subCategoriesCount"`
}
