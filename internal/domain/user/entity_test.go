package user

import (
	"strings"
	"testing"
	"time"
)

func TestRoleSatisfies(t *testing.T) {
	cases := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleUser, RoleAdmin, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleUser, true},
		{Role(""), RoleUser, false},
	}
	for _, tc := range cases {
		if got := tc.role.Satisfies(tc.required); got != tc.want {
			t.Fatalf("%q.Satisfies(%q) = %v, want %v", tc.role, tc.required, got, tc.want)
		}
	}
}

func TestParseRoleDefaultsToUser(t *testing.T) {
	for _, in := range []string{"", "superuser", "user", "root"} {
		if got := ParseRole(in); got != RoleUser {
			t.Fatalf("ParseRole(%q) = %q, want user", in, got)
		}
	}
	if got := ParseRole(" Admin "); got != RoleAdmin {
		t.Fatalf("ParseRole(Admin) = %q, want admin", got)
	}
}

func TestNewDefault(t *testing.T) {
	u, err := NewDefault("uid-1", "a@example.com", time.Now())
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	if u.Role != RoleUser {
		t.Fatalf("Role = %q, want user", u.Role)
	}
	if _, err := NewDefault("", "a@example.com", time.Now()); err != ErrInvalidID {
		t.Fatalf("err = %v, want %v", err, ErrInvalidID)
	}
}

func TestProfilePatchValidate(t *testing.T) {
	long := strings.Repeat("x", MaxNameLength+1)
	bad := "ftp://host/a.png"
	ok := "data:image/png;base64,AAAA"

	if err := (ProfilePatch{Name: &long}).Validate(); err != ErrInvalidName {
		t.Fatalf("err = %v, want %v", err, ErrInvalidName)
	}
	if err := (ProfilePatch{Avatar: &bad}).Validate(); err != ErrInvalidAvatar {
		t.Fatalf("err = %v, want %v", err, ErrInvalidAvatar)
	}
	if err := (ProfilePatch{Avatar: &ok}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestProfilePatchApplyLeavesNilFields(t *testing.T) {
	name := "  Ada "
	u := ProfilePatch{Name: &name}.Apply(User{Nickname: "ada", Role: RoleAdmin})
	if u.Name != "Ada" || u.Nickname != "ada" || u.Role != RoleAdmin {
		t.Fatalf("Apply = %+v", u)
	}
}
