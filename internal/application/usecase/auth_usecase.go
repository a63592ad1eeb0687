// internal/application/usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	sessiondom "storefront/internal/domain/session"
)

var ErrAuthInvalidArgument = errors.New("auth_usecase: email and password are required")

// AuthUsecase signs identities in and out and announces every transition.
type AuthUsecase struct {
	provider  AuthProvider
	publisher SessionPublisher
	log       *zap.Logger
}

func NewAuthUsecase(provider AuthProvider, publisher SessionPublisher, log *zap.Logger) *AuthUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{provider: provider, publisher: publisher, log: log.Named("auth")}
}

func (uc *AuthUsecase) SignUp(ctx context.Context, email, password string) (AuthResult, error) {
	return uc.authenticate(ctx, "sign-up", email, password, uc.provider.SignUp)
}

func (uc *AuthUsecase) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	return uc.authenticate(ctx, "sign-in", email, password, uc.provider.SignIn)
}

// SignOut announces that uid no longer has a session.
func (uc *AuthUsecase) SignOut(_ context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return sessiondom.ErrNoIdentity
	}
	if uc.publisher != nil {
		uc.publisher.Publish(sessiondom.SignedOut(uid))
	}
	uc.log.Info("signed out", zap.String("uid", uid))
	return nil
}

func (uc *AuthUsecase) authenticate(
	ctx context.Context,
	op, email, password string,
	call func(context.Context, string, string) (AuthResult, error),
) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrAuthInvalidArgument
	}
	res, err := call(ctx, email, password)
	if err != nil {
		uc.log.Info(op+" rejected", zap.String("email", email), zap.Error(err))
		return AuthResult{}, err
	}
	if uc.publisher != nil {
		uc.publisher.Publish(sessiondom.SignedIn(res.Identity))
	}
	uc.log.Info(op+" ok", zap.String("uid", res.Identity.UID))
	return res, nil
}
