package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	sessiondom "storefront/internal/domain/session"
	userdom "storefront/internal/domain/user"
)

var errStoreDown = errors.New("store unreachable")

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// ---- carts ----

type fakeCartRepo struct {
	mu       sync.Mutex
	docs     map[string]cartdom.Items
	writes   int
	failNext int
	getErr   error
	// getGate, when set, holds every load until it is closed.
	getGate chan struct{}
	loads   int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{docs: map[string]cartdom.Items{}}
}

func (r *fakeCartRepo) GetByUID(_ context.Context, uid string) (*cartdom.Cart, error) {
	if r.getGate != nil {
		<-r.getGate
	}
	r.mu.Lock()
	r.loads++
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	items, ok := r.docs[uid]
	if !ok {
		return nil, nil
	}
	return &cartdom.Cart{ID: uid, Items: items.Clone()}, nil
}

func (r *fakeCartRepo) Replace(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext > 0 {
		r.failNext--
		return errStoreDown
	}
	r.writes++
	r.docs[c.ID] = c.Items.Clone()
	return nil
}

func (r *fakeCartRepo) stored(uid string) cartdom.Items {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[uid].Clone()
}

// ---- products ----

type fakeProductRepo struct {
	mu      sync.Mutex
	byID    map[string]productdom.Product
	order   []string
	nextID  int
	failFor map[string]bool
	listErr error
	lists   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: map[string]productdom.Product{}, failFor: map[string]bool{}}
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) Add(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[p.Name] {
		return productdom.Product{}, errStoreDown
	}
	r.nextID++
	p.ID = fmt.Sprintf("p%d", r.nextID)
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *fakeProductRepo) ListAll(_ context.Context) ([]productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]productdom.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *fakeProductRepo) SetVendor(_ context.Context, id, vendor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return productdom.ErrNotFound
	}
	p.Vendor = vendor
	r.byID[id] = p
	return nil
}

// ---- users ----

type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]userdom.User
	getErr    error
	createErr error
	merges    []userdom.MergeFields
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]userdom.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return userdom.User{}, r.getErr
	}
	u, ok := r.byID[id]
	if !ok {
		return userdom.User{}, userdom.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u userdom.User) (userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return userdom.User{}, r.createErr
	}
	if _, ok := r.byID[u.ID]; ok {
		return userdom.User{}, userdom.ErrConflict
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) Merge(_ context.Context, id string, f userdom.MergeFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	u.ID = id
	u.Name, u.Nickname, u.Avatar, u.Email, u.UpdatedAt = f.Name, f.Nickname, f.Avatar, f.Email, f.UpdatedAt
	r.byID[id] = u
	r.merges = append(r.merges, f)
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (userdom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return userdom.User{}, userdom.ErrNotFound
}

func (r *fakeUserRepo) SetRole(_ context.Context, id string, role userdom.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return userdom.ErrNotFound
	}
	u.Role = role
	r.byID[id] = u
	return nil
}

// ---- session / auth ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []sessiondom.Event
}

func (p *recordingPublisher) Publish(e sessiondom.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

type fakeAuthProvider struct {
	accounts map[string]string
	next     int
}

func (f *fakeAuthProvider) SignUp(_ context.Context, email, password string) (AuthResult, error) {
	if f.accounts == nil {
		f.accounts = map[string]string{}
	}
	if _, ok := f.accounts[email]; ok {
		return AuthResult{}, fmt.Errorf("%w: EMAIL_EXISTS", ErrAuthRejected)
	}
	f.accounts[email] = password
	f.next++
	return AuthResult{Identity: sessiondom.Identity{UID: fmt.Sprintf("uid-%d", f.next), Email: email}, IDToken: "tok"}, nil
}

func (f *fakeAuthProvider) SignIn(_ context.Context, email, password string) (AuthResult, error) {
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return AuthResult{}, fmt.Errorf("%w: INVALID_PASSWORD", ErrAuthRejected)
	}
	return AuthResult{Identity: sessiondom.Identity{UID: "uid-" + email, Email: email}, IDToken: "tok"}, nil
}
