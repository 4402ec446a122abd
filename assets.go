// Package marketplaceadmin provides embedded assets for production builds.
package marketplaceadmin

import "embed"

// In dev mode (IsDev=true) templates and static files are read from disk so
// edits show up without a rebuild.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
