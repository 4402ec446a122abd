package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/urbanmart/marketplace-admin/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	t.Parallel()
	m := StaticRoleMapper{
		AdminGroup: "cn=admins,ou=groups,dc=example,dc=org",
		UserGroup:  "support",
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{name: "no groups", want: domainauth.RoleGuest},
		{name: "unrelated", groups: []string{"finance"}, want: domainauth.RoleGuest},
		{name: "exact dn", groups: []string{"cn=admins,ou=groups,dc=example,dc=org"}, want: domainauth.RoleAdmin},
		{name: "bare cn matches dn", groups: []string{"Admins"}, want: domainauth.RoleAdmin},
		{name: "user", groups: []string{"SUPPORT"}, want: domainauth.RoleUser},
		{name: "user dn", groups: []string{"CN=support,OU=teams"}, want: domainauth.RoleUser},
		{name: "admin wins regardless of order", groups: []string{"support", "admins"}, want: domainauth.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyConfigGrantsNothing(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domainauth.RoleGuest, StaticRoleMapper{}.Map([]string{"", "admins"}))
}
