// internal/adapters/out/firestore/user_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	udom "storefront/internal/domain/user"
)

// UserRepositoryFS stores profiles in users/{uid}.
// DocID is always the Firebase Auth UID; auto-ids are never used.
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func (r *UserRepositoryFS) GetByID(ctx context.Context, id string) (udom.User, error) {
	if r.Client == nil {
		return udom.User{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return udom.User{}, udom.ErrNotFound
	}
	if err != nil {
		return udom.User{}, err
	}
	return docToUser(snap)
}

// Create fails with ErrConflict when the document already exists.
func (r *UserRepositoryFS) Create(ctx context.Context, v udom.User) (udom.User, error) {
	if r.Client == nil {
		return udom.User{}, errNilClient
	}
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return udom.User{}, udom.ErrInvalidID
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if v.Role == "" {
		v.Role = udom.RoleUser
	}

	data := map[string]any{
		"role":      string(v.Role),
		"email":     strings.TrimSpace(v.Email),
		"createdAt": v.CreatedAt.UTC(),
	}
	if s := strings.TrimSpace(v.Name); s != "" {
		data["name"] = s
	}
	if s := strings.TrimSpace(v.Nickname); s != "" {
		data["nickname"] = s
	}

	if _, err := r.col().Doc(id).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return udom.User{}, udom.ErrConflict
		}
		return udom.User{}, err
	}
	v.ID = id
	return v, nil
}

// Merge is set-with-merge over the profile fields only.
func (r *UserRepositoryFS) Merge(ctx context.Context, id string, f udom.MergeFields) error {
	if r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := r.col().Doc(id).Set(ctx, map[string]any{
		"name":      f.Name,
		"nickname":  f.Nickname,
		"avatar":    f.Avatar,
		"email":     f.Email,
		"updatedAt": updatedAt,
	}, firestore.MergeAll)
	return err
}

func (r *UserRepositoryFS) FindByEmail(ctx context.Context, email string) (udom.User, error) {
	if r.Client == nil {
		return udom.User{}, errNilClient
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return udom.User{}, udom.ErrNotFound
	}

	it := r.col().Where("email", "==", email).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return udom.User{}, udom.ErrNotFound
	}
	if err != nil {
		return udom.User{}, err
	}
	return docToUser(snap)
}

func (r *UserRepositoryFS) SetRole(ctx context.Context, id string, role udom.Role) error {
	if r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return udom.ErrInvalidID
	}
	_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
		{Path: "role", Value: string(udom.ParseRole(string(role)))},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return udom.ErrNotFound
	}
	return err
}

func docToUser(doc *firestore.DocumentSnapshot) (udom.User, error) {
	data := doc.Data()
	if data == nil {
		return udom.User{}, udom.ErrNotFound
	}

	u := udom.User{
		ID:       strings.TrimSpace(doc.Ref.ID),
		Name:     asString(data["name"]),
		Nickname: asString(data["nickname"]),
		Avatar:   asString(data["avatar"]),
		Email:    asString(data["email"]),
		Role:     udom.ParseRole(asString(data["role"])),
	}
	if t, ok := asTime(data["createdAt"]); ok {
		u.CreatedAt = t
	}
	if t, ok := asTime(data["updatedAt"]); ok {
		u.UpdatedAt = t
	}
	return u, nil
}
