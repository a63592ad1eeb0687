// internal/domain/session/identity.go
package session

import (
	"errors"
	"strings"
)

var ErrNoIdentity = errors.New("session: no identity")

// Identity is the account issued by the auth provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Valid reports whether id carries a usable uid.
func (id *Identity) Valid() bool {
	return id != nil && strings.TrimSpace(id.UID) != ""
}

// Event is a session change for one uid.
// Identity == nil means the uid signed out.
type Event struct {
	UID      string
	Identity *Identity
}

// SignedIn builds the event emitted after sign-up / sign-in.
func SignedIn(id Identity) Event {
	cp := id
	return Event{UID: id.UID, Identity: &cp}
}

// SignedOut builds the event emitted after sign-out.
func SignedOut(uid string) Event {
	return Event{UID: uid}
}

// IsSignOut reports whether e carries no identity.
func (e Event) IsSignOut() bool {
	return e.Identity == nil
}
