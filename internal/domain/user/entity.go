// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"
)

// Role is the authorization tier stored on the profile document.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored value onto a known tier.
// Anything that is not exactly "admin" is treated as the least-privileged tier.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Satisfies reports whether r grants access to something that requires `required`.
// admin implies user.
func (r Role) Satisfies(required Role) bool {
	switch ParseRole(string(required)) {
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return r == RoleUser || r == RoleAdmin
	}
}

// User is the profile document of one identity (docId = uid).
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Errors (single source)
var (
	ErrNotFound      = errors.New("user: not found")
	ErrConflict      = errors.New("user: conflict")
	ErrInvalidID     = errors.New("user: invalid id")
	ErrInvalidName   = errors.New("user: invalid name")
	ErrInvalidAvatar = errors.New("user: invalid avatar")
)

// Policy
var (
	MaxNameLength = 100
	// Inline data: URIs live in the document itself, keep them well below the 1MiB doc limit.
	MaxAvatarBytes = 512 * 1024
)

// NewDefault is the profile created lazily on first authentication.
func NewDefault(uid, email string, now time.Time) (User, error) {
	u := User{
		ID:        strings.TrimSpace(uid),
		Role:      RoleUser,
		Email:     strings.TrimSpace(email),
		CreatedAt: now.UTC(),
	}
	if u.ID == "" {
		return User{}, ErrInvalidID
	}
	return u, nil
}

// ProfilePatch carries the user-editable fields.
// nil means "leave unchanged".
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// Validate checks lengths and avatar shape.
func (p ProfilePatch) Validate() error {
	if p.Name != nil && len([]rune(strings.TrimSpace(*p.Name))) > MaxNameLength {
		return ErrInvalidName
	}
	if p.Nickname != nil && len([]rune(strings.TrimSpace(*p.Nickname))) > MaxNameLength {
		return ErrInvalidName
	}
	if p.Avatar != nil {
		a := strings.TrimSpace(*p.Avatar)
		if len(a) > MaxAvatarBytes {
			return ErrInvalidAvatar
		}
		if a != "" && !isAvatarRef(a) {
			return ErrInvalidAvatar
		}
	}
	return nil
}

// Apply returns u with the patch applied (trimmed).
func (p ProfilePatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Nickname != nil {
		u.Nickname = strings.TrimSpace(*p.Nickname)
	}
	if p.Avatar != nil {
		u.Avatar = strings.TrimSpace(*p.Avatar)
	}
	return u
}

func isAvatarRef(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "https://") ||
		strings.HasPrefix(l, "http://") ||
		strings.HasPrefix(l, "data:image/")
}
