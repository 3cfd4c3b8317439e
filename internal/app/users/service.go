// Package users backs the administrative user console. Session issuance and
// login live in the external identity system; this service only manages the
// records that system authenticates against.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"autofleet/internal/app/apperr"
	domainuser "autofleet/internal/domain/user"
)

// PasswordHasher abstracts credential hashing so tests can avoid bcrypt cost.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	Users  domainuser.Repository
	Hasher PasswordHasher

	Now   func() time.Time
	IDGen func() string
}

type CreateParams struct {
	Email    string
	Name     string
	Password string
	Roles    []string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainuser.User, error) {
	if params.Password == "" {
		return nil, apperr.Validation("password is required")
	}
	existing, err := s.Users.ByEmail(ctx, params.Email)
	switch {
	case err == nil && existing != nil:
		return nil, apperr.Conflict("email %s is already registered", params.Email)
	case err != nil && !errors.Is(err, domainuser.ErrNotFound):
		return nil, apperr.Storage(err)
	}
	hash, err := s.Hasher.Hash(params.Password)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	account, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(s.newID()),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
		Roles:        mapRoles(params.Roles),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if err := s.Users.Save(ctx, account); err != nil {
		if errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
			return nil, apperr.Conflict("email %s is already registered", params.Email)
		}
		return nil, apperr.Storage(err)
	}
	return account, nil
}

type UpdateParams struct {
	Name     string
	Password string
	Roles    []string
}

func (s *Service) Update(ctx context.Context, id domainuser.ID, params UpdateParams) (*domainuser.User, error) {
	account, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.UpdateName(params.Name, s.now()); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if params.Password != "" {
		hash, err := s.Hasher.Hash(params.Password)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		if err := account.SetPasswordHash(hash, s.now()); err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
	}
	if len(params.Roles) > 0 {
		if err := account.AssignRoles(mapRoles(params.Roles), s.now()); err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
	}
	if err := s.Users.Save(ctx, account); err != nil {
		return nil, apperr.Storage(err)
	}
	return account, nil
}

func (s *Service) Delete(ctx context.Context, id domainuser.ID) error {
	if _, err := s.byID(ctx, id); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return s.byID(ctx, id)
}

func (s *Service) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	items, total, err := s.Users.List(ctx, params)
	if err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return items, total, nil
}

func (s *Service) byID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, apperr.NotFound("user", string(id))
		}
		return nil, apperr.Storage(err)
	}
	return account, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.IDGen != nil {
		return s.IDGen()
	}
	return uuid.NewString()
}

func mapRoles(raw []string) []domainuser.Role {
	roles := make([]domainuser.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, domainuser.Role(r))
	}
	return roles
}
