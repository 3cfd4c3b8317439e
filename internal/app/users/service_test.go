package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofleet/internal/app/apperr"
	domainuser "autofleet/internal/domain/user"
	"autofleet/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newService() *Service {
	return &Service{
		Users:  memory.NewUserRepository(),
		Hasher: plainHasher{},
		Now:    func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestCreate_HashesPasswordAndDefaultsRole(t *testing.T) {
	svc := newService()

	account, err := svc.Create(context.Background(), CreateParams{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:s3cret", account.PasswordHash)
	assert.True(t, account.HasRole(domainuser.RoleCustomer))
	assert.False(t, account.IsAdmin())
}

func TestCreate_RejectsDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Email: "alice@example.com", Name: "Alice", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateParams{Email: "Alice@Example.com", Name: "Alice Again", Password: "y"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreate_RequiresPassword(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), CreateParams{Email: "alice@example.com", Name: "Alice"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// brokenEmailLookup simulates a repository whose email lookup fails for
// reasons other than the address being free.
type brokenEmailLookup struct {
	*memory.UserRepository
}

func (r brokenEmailLookup) ByEmail(context.Context, string) (*domainuser.User, error) {
	return nil, errors.New("connection reset by peer")
}

func TestCreate_LookupFailureIsStorageNotFreeEmail(t *testing.T) {
	store := memory.NewUserRepository()
	svc := newService()
	svc.Users = brokenEmailLookup{UserRepository: store}
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Email: "alice@example.com", Name: "Alice", Password: "x"})
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	_, total, err := store.List(ctx, domainuser.ListParams{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total, "a failed uniqueness check must not create the account")
}

func TestUpdate_RotatesPasswordAndRoles(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateParams{Email: "alice@example.com", Name: "Alice", Password: "old"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, account.ID, UpdateParams{
		Name:     "Alice B",
		Password: "new",
		Roles:    []string{"admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "hashed:new", updated.PasswordHash)
	assert.True(t, updated.IsAdmin())
}

func TestDelete_UnknownUserIsNotFound(t *testing.T) {
	svc := newService()

	err := svc.Delete(context.Background(), "usr-missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
