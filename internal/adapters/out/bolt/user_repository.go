package bolt

import (
	"context"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	udom "storefront/internal/domain/user"
)

type userRecord struct {
	Name      string    `json:"name,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (rec userRecord) toDomain(id string) udom.User {
	return udom.User{
		ID:        id,
		Name:      rec.Name,
		Nickname:  rec.Nickname,
		Avatar:    rec.Avatar,
		Role:      udom.ParseRole(rec.Role),
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// UserRepository implements user.Repository on a Store.
type UserRepository struct {
	store *Store
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (udom.User, error) {
	if err := r.store.ready(ctx); err != nil {
		return udom.User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}

	var rec userRecord
	var found bool
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		var err error
		found, err = get(tx, usersBucket, id, &rec)
		return err
	})
	if err != nil {
		return udom.User{}, err
	}
	if !found {
		return udom.User{}, udom.ErrNotFound
	}
	return rec.toDomain(id), nil
}

func (r *UserRepository) Create(ctx context.Context, u udom.User) (udom.User, error) {
	if err := r.store.ready(ctx); err != nil {
		return udom.User{}, err
	}
	id := strings.TrimSpace(u.ID)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = udom.RoleUser
	}
	u.ID = id

	err := r.store.db.Update(func(tx *bbolt.Tx) error {
		var existing userRecord
		found, err := get(tx, usersBucket, id, &existing)
		if err != nil {
			return err
		}
		if found {
			return udom.ErrConflict
		}
		return put(tx, usersBucket, id, userRecord{
			Name:      u.Name,
			Nickname:  u.Nickname,
			Avatar:    u.Avatar,
			Role:      string(u.Role),
			Email:     u.Email,
			CreatedAt: u.CreatedAt.UTC(),
			UpdatedAt: u.UpdatedAt,
		})
	})
	if err != nil {
		return udom.User{}, err
	}
	return u, nil
}

// Merge creates the document when absent, like a Firestore set-with-merge.
func (r *UserRepository) Merge(ctx context.Context, id string, f udom.MergeFields) error {
	if err := r.store.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	return r.store.db.Update(func(tx *bbolt.Tx) error {
		var rec userRecord
		if _, err := get(tx, usersBucket, id, &rec); err != nil {
			return err
		}
		rec.Name, rec.Nickname, rec.Avatar, rec.Email = f.Name, f.Nickname, f.Avatar, f.Email
		rec.UpdatedAt = f.UpdatedAt.UTC()
		return put(tx, usersBucket, id, rec)
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (udom.User, error) {
	if err := r.store.ready(ctx); err != nil {
		return udom.User{}, err
	}
	email = strings.TrimSpace(email)

	var (
		out   udom.User
		found bool
	)
	err := r.store.db.View(func(tx *bbolt.Tx) error {
		return forEach(tx, usersBucket, func(id string, rec *userRecord) {
			if !found && email != "" && rec.Email == email {
				out, found = rec.toDomain(id), true
			}
		})
	})
	if err != nil {
		return udom.User{}, err
	}
	if !found {
		return udom.User{}, udom.ErrNotFound
	}
	return out, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role udom.Role) error {
	if err := r.store.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	return r.store.db.Update(func(tx *bbolt.Tx) error {
		var rec userRecord
		found, err := get(tx, usersBucket, id, &rec)
		if err != nil {
			return err
		}
		if !found {
			return udom.ErrNotFound
		}
		rec.Role = string(udom.ParseRole(string(role)))
		rec.UpdatedAt = time.Now().UTC()
		return put(tx, usersBucket, id, rec)
	})
}
