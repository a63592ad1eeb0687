// internal/application/usecase/profile_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	sessiondom "storefront/internal/domain/session"
	userdom "storefront/internal/domain/user"
)

// ErrProfileNotRegistered is returned by GrantAdmin when no profile carries the
// email yet (the account has never signed in).
var ErrProfileNotRegistered = errors.New("profile_usecase: no profile for email, the user must sign in at least once")

// ProfileUsecase reads and edits users/{uid}.
type ProfileUsecase struct {
	repo  userdom.Repository
	clock Clock
	log   *zap.Logger
}

func NewProfileUsecase(repo userdom.Repository, log *zap.Logger) *ProfileUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileUsecase{repo: repo, clock: systemClock{}, log: log.Named("profile")}
}

// NewProfileUsecaseWithClock is useful for tests.
func NewProfileUsecaseWithClock(repo userdom.Repository, clock Clock, log *zap.Logger) *ProfileUsecase {
	uc := NewProfileUsecase(repo, log)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// GetOrCreate returns the profile, creating the default one when absent.
func (uc *ProfileUsecase) GetOrCreate(ctx context.Context, identity *sessiondom.Identity) (userdom.User, error) {
	if !identity.Valid() {
		return userdom.User{}, ErrSignInRequired
	}
	uid := strings.TrimSpace(identity.UID)

	u, err := uc.repo.GetByID(ctx, uid)
	if err == nil {
		u.Role = userdom.ParseRole(string(u.Role))
		return u, nil
	}
	if !errors.Is(err, userdom.ErrNotFound) {
		return userdom.User{}, fmt.Errorf("profile get uid=%s: %w", uid, err)
	}

	nu, err := userdom.NewDefault(uid, identity.Email, uc.clock.Now())
	if err != nil {
		return userdom.User{}, err
	}
	created, err := uc.repo.Create(ctx, nu)
	if errors.Is(err, userdom.ErrConflict) {
		return uc.repo.GetByID(ctx, uid)
	}
	if err != nil {
		return userdom.User{}, fmt.Errorf("profile create uid=%s: %w", uid, err)
	}
	return created, nil
}

// Update merges the editable fields. Email is re-asserted from the identity
// when the token carries one and kept otherwise; role is never touched here.
func (uc *ProfileUsecase) Update(ctx context.Context, identity *sessiondom.Identity, patch userdom.ProfilePatch) (userdom.User, error) {
	if err := patch.Validate(); err != nil {
		return userdom.User{}, err
	}
	cur, err := uc.GetOrCreate(ctx, identity)
	if err != nil {
		return userdom.User{}, err
	}

	next := patch.Apply(cur)
	if email := strings.TrimSpace(identity.Email); email != "" {
		next.Email = email
	}
	next.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.repo.Merge(ctx, next.ID, userdom.MergeFields{
		Name:      next.Name,
		Nickname:  next.Nickname,
		Avatar:    next.Avatar,
		Email:     next.Email,
		UpdatedAt: next.UpdatedAt,
	}); err != nil {
		return userdom.User{}, fmt.Errorf("profile merge uid=%s: %w", next.ID, err)
	}
	return next, nil
}

// GrantAdmin sets role=admin on the profile with the given email.
func (uc *ProfileUsecase) GrantAdmin(ctx context.Context, email string) (userdom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return userdom.User{}, userdom.ErrInvalidID
	}
	u, err := uc.repo.FindByEmail(ctx, email)
	if errors.Is(err, userdom.ErrNotFound) {
		return userdom.User{}, ErrProfileNotRegistered
	}
	if err != nil {
		return userdom.User{}, fmt.Errorf("grant admin %s: %w", email, err)
	}
	if err := uc.repo.SetRole(ctx, u.ID, userdom.RoleAdmin); err != nil {
		return userdom.User{}, fmt.Errorf("grant admin %s: %w", email, err)
	}
	u.Role = userdom.RoleAdmin
	uc.log.Info("admin granted", zap.String("uid", u.ID), zap.String("email", email))
	return u, nil
}
