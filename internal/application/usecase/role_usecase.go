// internal/application/usecase/role_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	sessiondom "storefront/internal/domain/session"
	userdom "storefront/internal/domain/user"
)

// View is a navigable screen of the storefront.
type View string

const (
	ViewProducts      View = "products"
	ViewProductDetail View = "productDetail"
	ViewCart          View = "cart"
	ViewLogin         View = "login"
	ViewSignup        View = "signup"
	ViewAdmin         View = "admin"
	ViewProfile       View = "profile"
	ViewAccessDenied  View = "accessDenied"
)

// viewTier is the tier each gated view requires. Missing = public.
var viewTier = map[View]userdom.Role{
	ViewAdmin:   userdom.RoleAdmin,
	ViewProfile: userdom.RoleUser,
	ViewCart:    userdom.RoleUser,
}

var knownViews = map[View]bool{
	ViewProducts:      true,
	ViewProductDetail: true,
	ViewCart:          true,
	ViewLogin:         true,
	ViewSignup:        true,
	ViewAdmin:         true,
	ViewProfile:       true,
	ViewAccessDenied:  true,
}

// RoleGate resolves the caller's tier and gates views.
// An anonymous caller has the zero Role ("") which satisfies no tier.
type RoleGate struct {
	users userdom.Repository
	clock Clock
	log   *zap.Logger
}

func NewRoleGate(users userdom.Repository, log *zap.Logger) *RoleGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleGate{users: users, clock: systemClock{}, log: log.Named("role_gate")}
}

// NewRoleGateWithClock is useful for tests.
func NewRoleGateWithClock(users userdom.Repository, clock Clock, log *zap.Logger) *RoleGate {
	g := NewRoleGate(users, log)
	if clock != nil {
		g.clock = clock
	}
	return g
}

// ResolveRole never fails: a missing profile is created with the user tier,
// and any store error degrades to the user tier.
func (g *RoleGate) ResolveRole(ctx context.Context, identity *sessiondom.Identity) userdom.Role {
	if !identity.Valid() {
		return ""
	}
	uid := strings.TrimSpace(identity.UID)

	u, err := g.users.GetByID(ctx, uid)
	if err == nil {
		return userdom.ParseRole(string(u.Role))
	}
	if !errors.Is(err, userdom.ErrNotFound) {
		g.log.Warn("role read failed, using user tier", zap.String("uid", uid), zap.Error(err))
		return userdom.RoleUser
	}

	nu, err := userdom.NewDefault(uid, identity.Email, g.clock.Now())
	if err != nil {
		return userdom.RoleUser
	}
	if _, err := g.users.Create(ctx, nu); err != nil {
		if errors.Is(err, userdom.ErrConflict) {
			// created concurrently; trust whatever is stored now
			if u, gerr := g.users.GetByID(ctx, uid); gerr == nil {
				return userdom.ParseRole(string(u.Role))
			}
		}
		g.log.Warn("profile create failed, using user tier", zap.String("uid", uid), zap.Error(err))
		return userdom.RoleUser
	}
	g.log.Info("profile created", zap.String("uid", uid))
	return userdom.RoleUser
}

// IsAuthorized reports whether role reaches required. admin implies user.
func (g *RoleGate) IsAuthorized(role, required userdom.Role) bool {
	return role.Satisfies(required)
}

// Navigate returns the view the caller actually gets for the requested one.
//   - admin without admin tier -> accessDenied
//   - profile / cart without any tier -> login
//   - unknown view -> products
func (g *RoleGate) Navigate(role userdom.Role, requested View) View {
	v := View(strings.TrimSpace(string(requested)))
	if !knownViews[v] {
		return ViewProducts
	}
	need, gated := viewTier[v]
	if !gated || role.Satisfies(need) {
		return v
	}
	if need == userdom.RoleAdmin {
		return ViewAccessDenied
	}
	return ViewLogin
}
