package model

import (
	"errors"
	"math"
)

const maxPercent = 100

// Settings are the platform-wide commercial parameters. JSON names follow
// the marketplace API, including its "plateformfee" spelling.
type Settings struct {
	VendorCommission float64 `json:"vendorCommission"`
	PlatformFee      float64 `json:"plateformfee"`
	GST              float64 `json:"gst"`
	DeliveryFee      float64 `json:"deliveryFee"`
}

// DefaultSettings is used when the API has no settings stored yet.
func DefaultSettings() Settings { return Settings{} }

// SettingsFieldError reports which settings field failed validation.
type SettingsFieldError struct {
	Field   string
	Message string
}

func (e *SettingsFieldError) Error() string { return e.Field + ": " + e.Message }

// Validate checks that amounts are non-negative finite numbers and that the
// percentage fields do not exceed 100.
func (s Settings) Validate() error {
	fields := []struct {
		name    string
		label   string
		value   float64
		percent bool
	}{
		{"vendorCommission", "Vendor commission", s.VendorCommission, true},
		{"plateformfee", "Platform fee", s.PlatformFee, false},
		{"gst", "GST", s.GST, true},
		{"deliveryFee", "Delivery fee", s.DeliveryFee, false},
	}
	var errs []error
	for _, f := range fields {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			errs = append(errs, &SettingsFieldError{Field: f.name, Message: f.label + " must be a number"})
		case f.value < 0:
			errs = append(errs, &SettingsFieldError{Field: f.name, Message: f.label + " cannot be negative"})
		case f.percent && f.value > maxPercent:
			errs = append(errs, &SettingsFieldError{Field: f.name, Message: f.label + " cannot exceed 100%"})
		}
	}
	return errors.Join(errs...)
}
