// internal/adapters/out/firebase/auth_provider.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"storefront/internal/application/usecase"
	sessiondom "storefront/internal/domain/session"
)

// AuthProvider implements usecase.AuthProvider with the Identity Toolkit
// password endpoints (the same ones the Firebase web SDK calls).
type AuthProvider struct {
	svc *identitytoolkit.Service
}

// NewAuthProvider builds the client with the project's web API key.
func NewAuthProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*AuthProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("firebase auth: web api key is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: identitytoolkit client: %w", err)
	}
	return &AuthProvider{svc: svc}, nil
}

func (p *AuthProvider) SignUp(ctx context.Context, email, password string) (usecase.AuthResult, error) {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return usecase.AuthResult{}, mapAuthError("sign-up", err)
	}
	return authResult(resp.LocalId, resp.Email, resp.IdToken, resp.RefreshToken, cast.ToString(resp.ExpiresIn)), nil
}

func (p *AuthProvider) SignIn(ctx context.Context, email, password string) (usecase.AuthResult, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return usecase.AuthResult{}, mapAuthError("sign-in", err)
	}
	return authResult(resp.LocalId, resp.Email, resp.IdToken, resp.RefreshToken, cast.ToString(resp.ExpiresIn)), nil
}

func authResult(uid, email, idToken, refreshToken, expiresIn string) usecase.AuthResult {
	return usecase.AuthResult{
		Identity:     sessiondom.Identity{UID: uid, Email: email},
		IDToken:      idToken,
		RefreshToken: refreshToken,
		ExpiresIn:    time.Duration(cast.ToInt64(strings.TrimSpace(expiresIn))) * time.Second,
	}
}

// mapAuthError turns 4xx answers (EMAIL_EXISTS, INVALID_PASSWORD, ...) into
// usecase.ErrAuthRejected; everything else stays a remote failure.
func mapAuthError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= http.StatusBadRequest && gerr.Code < http.StatusInternalServerError {
		reason := strings.TrimSpace(gerr.Message)
		if reason == "" {
			reason = http.StatusText(gerr.Code)
		}
		return fmt.Errorf("%w: %s", usecase.ErrAuthRejected, reason)
	}
	return fmt.Errorf("firebase auth %s: %w", op, err)
}
