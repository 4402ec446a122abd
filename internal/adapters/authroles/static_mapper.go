package authroles

import (
	"strings"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

// StaticRoleMapper grants console roles from two configured IdP groups.
// Groups compare case-insensitively, and a distinguished name such as
// "cn=admins,ou=groups,dc=example,dc=org" also matches its bare common name.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

// Map returns the strongest role any of groups grants. Admin wins over user;
// nothing matching means guest.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	role := domainauth.RoleGuest
	for _, g := range groups {
		switch {
		case sameGroup(g, m.AdminGroup):
			return domainauth.RoleAdmin
		case sameGroup(g, m.UserGroup):
			role = domainauth.RoleUser
		}
	}
	return role
}

func sameGroup(got, want string) bool {
	if want == "" {
		return false
	}
	got, want = strings.TrimSpace(got), strings.TrimSpace(want)
	if strings.EqualFold(got, want) {
		return true
	}
	return strings.EqualFold(commonName(got), commonName(want))
}

// commonName returns the leading CN of a DN, or s unchanged.
func commonName(s string) string {
	first, _, _ := strings.Cut(s, ",")
	k, v, ok := strings.Cut(first, "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(k), "cn") {
		return s
	}
	return strings.TrimSpace(v)
}
