package model

import "testing"

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"admin", []string{RoleAdmin}, true},
		{"member_and_admin", []string{RoleMember, RoleAdmin}, true},
		{"member_only", []string{RoleMember}, false},
		{"no_roles", nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u := &User{Roles: test.roles}
			if got := u.IsAdmin(); got != test.want {
				t.Errorf("IsAdmin() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestUser_HasRole_AdminImpliesAll(t *testing.T) {
	u := &User{Roles: []string{RoleAdmin}}

	if !u.HasRole(RoleMember) {
		t.Error("expected admin to imply member role")
	}
}

func TestAuthContext_IsAdmin(t *testing.T) {
	a := &AuthContext{Roles: []string{RoleMember}}
	if a.IsAdmin() {
		t.Error("expected member auth context not to be admin")
	}

	a.Roles = append(a.Roles, RoleAdmin)
	if !a.IsAdmin() {
		t.Error("expected admin auth context to be admin")
	}
}
