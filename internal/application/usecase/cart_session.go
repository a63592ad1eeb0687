// internal/application/usecase/cart_session.go
package usecase

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	cartdom "storefront/internal/domain/cart"
	sessiondom "storefront/internal/domain/session"
)

// PersistWarning reports a failed write-through. The mutation it belongs to
// has already been applied in memory and stays applied.
type PersistWarning struct {
	Err error
}

func (w *PersistWarning) Error() string {
	return "Your cart could not be saved. Your changes are kept for this session."
}

func (w *PersistWarning) Unwrap() error { return w.Err }

// MutationResult is the cart after a mutation plus an optional persist warning.
type MutationResult struct {
	Items   cartdom.Items
	Warning *PersistWarning
}

type cartSnapshot struct {
	seq      uint64
	identity sessiondom.Identity
	items    cartdom.Items
}

// CartSession is the in-memory cart of one session.
//
// Mutations are applied under mu and numbered; writes go through writeMu so
// that at most one persist per identity is in flight, and a snapshot older than
// the last successfully written one is skipped.
type CartSession struct {
	uc *CartUsecase

	mu       sync.Mutex
	identity *sessiondom.Identity
	items    cartdom.Items
	seq      uint64

	writeMu sync.Mutex
	written uint64
}

// NewCartSession returns an unauthenticated, empty session.
func NewCartSession(uc *CartUsecase) *CartSession {
	return &CartSession{uc: uc, items: cartdom.Items{}}
}

// Identity returns a copy of the signed-in identity (nil when anonymous).
func (s *CartSession) Identity() *sessiondom.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// Items returns a copy of the current in-memory cart.
func (s *CartSession) Items() cartdom.Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// SignIn replaces the in-memory cart with the persisted one (no merge).
// On a load error the session stays as it was.
func (s *CartSession) SignIn(ctx context.Context, id sessiondom.Identity) error {
	return s.signIn(ctx, id, false)
}

// signIn loads the persisted cart under mu. With ifAnonymous set it is a no-op
// once the session already holds an identity, so concurrent first requests load
// the cart exactly once and never roll back a mutation made after that load.
func (s *CartSession) signIn(ctx context.Context, id sessiondom.Identity, ifAnonymous bool) error {
	if !id.Valid() {
		return sessiondom.ErrNoIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ifAnonymous && s.identity != nil {
		return nil
	}

	items, err := s.uc.Load(ctx, &id)
	if err != nil {
		return err
	}
	cp := id
	s.identity = &cp
	s.items = items
	s.seq++

	// The loaded state is what the store holds; nothing older needs writing.
	s.writeMu.Lock()
	s.written = s.seq
	s.writeMu.Unlock()
	return nil
}

// SignOut clears the in-memory cart. The persisted copy is left alone.
func (s *CartSession) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.items = cartdom.Items{}
	s.seq++
}

// Add increments productID; anonymous sessions get ErrSignInRequired.
func (s *CartSession) Add(ctx context.Context, productID string) (MutationResult, error) {
	return s.mutate(ctx, func(items cartdom.Items, id *sessiondom.Identity) (cartdom.Items, error) {
		return s.uc.AddItem(items, id, productID)
	})
}

// Decrement lowers productID by one (removing it at 1).
func (s *CartSession) Decrement(ctx context.Context, productID string) (MutationResult, error) {
	return s.mutate(ctx, func(items cartdom.Items, _ *sessiondom.Identity) (cartdom.Items, error) {
		return s.uc.DecrementItem(items, productID), nil
	})
}

// Remove drops productID regardless of quantity.
func (s *CartSession) Remove(ctx context.Context, productID string) (MutationResult, error) {
	return s.mutate(ctx, func(items cartdom.Items, _ *sessiondom.Identity) (cartdom.Items, error) {
		return s.uc.RemoveItem(items, productID), nil
	})
}

func (s *CartSession) mutate(
	ctx context.Context,
	fn func(cartdom.Items, *sessiondom.Identity) (cartdom.Items, error),
) (MutationResult, error) {
	s.mu.Lock()
	next, err := fn(s.items, s.identity)
	if err != nil {
		cur := s.items.Clone()
		s.mu.Unlock()
		return MutationResult{Items: cur}, err
	}
	if next.Equal(s.items) {
		cur := s.items.Clone()
		s.mu.Unlock()
		return MutationResult{Items: cur}, nil
	}
	s.items = next
	s.seq++
	if s.identity == nil {
		s.mu.Unlock()
		return MutationResult{Items: next.Clone()}, nil
	}
	snap := cartSnapshot{seq: s.seq, identity: *s.identity, items: next.Clone()}
	s.mu.Unlock()

	res := MutationResult{Items: snap.items.Clone()}
	if err := s.writeThrough(ctx, snap); err != nil {
		res.Warning = &PersistWarning{Err: err}
	}
	return res, nil
}

func (s *CartSession) writeThrough(ctx context.Context, snap cartSnapshot) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if snap.seq <= s.written {
		return nil
	}
	if err := s.uc.Persist(ctx, snap.items, &snap.identity); err != nil {
		return err
	}
	s.written = snap.seq
	return nil
}

// SessionManager keeps one CartSession per signed-in uid.
type SessionManager struct {
	carts *CartUsecase
	log   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*CartSession
}

func NewSessionManager(carts *CartUsecase, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		carts:    carts,
		log:      log.Named("cart_sessions"),
		sessions: map[string]*CartSession{},
	}
}

// Anonymous returns a throwaway session for callers without identity.
func (m *SessionManager) Anonymous() *CartSession {
	return NewCartSession(m.carts)
}

// Session returns the session for id, loading the persisted cart the first
// time the uid is seen (lazy sign-in).
func (m *SessionManager) Session(ctx context.Context, id sessiondom.Identity) (*CartSession, error) {
	if !id.Valid() {
		return nil, sessiondom.ErrNoIdentity
	}
	uid := strings.TrimSpace(id.UID)

	m.mu.Lock()
	s, ok := m.sessions[uid]
	if !ok {
		s = NewCartSession(m.carts)
		m.sessions[uid] = s
	}
	m.mu.Unlock()

	if s.Identity() != nil {
		return s, nil
	}
	if err := s.signIn(ctx, id, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply handles one session change event.
//   - sign-in: the cart is reloaded from the store (full replace)
//   - sign-out: the in-memory cart is cleared and the session forgotten
func (m *SessionManager) Apply(ctx context.Context, e sessiondom.Event) error {
	uid := strings.TrimSpace(e.UID)
	if e.IsSignOut() {
		m.mu.Lock()
		s, ok := m.sessions[uid]
		delete(m.sessions, uid)
		m.mu.Unlock()
		if ok {
			s.SignOut()
		}
		m.log.Debug("signed out", zap.String("uid", uid))
		return nil
	}

	m.mu.Lock()
	s, ok := m.sessions[uid]
	if !ok {
		s = NewCartSession(m.carts)
		m.sessions[uid] = s
	}
	m.mu.Unlock()

	if err := s.SignIn(ctx, *e.Identity); err != nil {
		m.log.Warn("cart load on sign-in failed", zap.String("uid", uid), zap.Error(err))
		return err
	}
	m.log.Debug("signed in", zap.String("uid", uid))
	return nil
}

// Run applies events until ctx is done or the channel is closed.
func (m *SessionManager) Run(ctx context.Context, events <-chan sessiondom.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			_ = m.Apply(ctx, e)
		}
	}
}
