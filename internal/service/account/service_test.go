package account_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
	"github.com/budgetly/budgetly/backend/internal/service/account"
	"github.com/budgetly/budgetly/backend/internal/store"
)

func newService(t *testing.T) (*account.Service, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := store.NewBoltStore(filepath.Join(dir, "budgetly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	uploads := filepath.Join(dir, "uploads")
	return account.NewService(db, uploads), uploads
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)

	user, err := svc.Register(account.Registration{DisplayName: "Ani", Email: "ani@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.Password)
	assert.Empty(t, user.ProfilePic)

	logged, err := svc.Login("ani@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.Password)

	_, err = svc.Login("ani@example.com", "salah")
	assert.ErrorIs(t, err, account.ErrWrongPassword)

	_, err = svc.Login("budi@example.com", "rahasia123")
	assert.ErrorIs(t, err, account.ErrUserNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(account.Registration{DisplayName: "Ani", Email: "ani@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(account.Registration{DisplayName: "Ani 2", Email: "ani@example.com", Password: "y"})
	assert.ErrorIs(t, err, account.ErrEmailTaken)
}

func TestRegisterDuplicateEmailWritesNoProfilePic(t *testing.T) {
	svc, uploads := newService(t)
	_, err := svc.Register(account.Registration{DisplayName: "Ani", Email: "ani@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(account.Registration{
		DisplayName: "Ani 2",
		Email:       "ani@example.com",
		Password:    "y",
		ProfilePic:  &finance.Upload{Filename: "me.png", Body: strings.NewReader("png")},
	})
	require.ErrorIs(t, err, account.ErrEmailTaken)

	entries, err := os.ReadDir(uploads)
	if !os.IsNotExist(err) {
		require.NoError(t, err)
	}
	assert.Empty(t, entries)
}

func TestRegisterStoresProfilePic(t *testing.T) {
	svc, uploads := newService(t)

	user, err := svc.Register(account.Registration{
		DisplayName: "Ani",
		Email:       "ani@example.com",
		Password:    "x",
		ProfilePic:  &finance.Upload{Filename: "me.png", Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.ProfilePic, "/uploads/"))
	assert.True(t, strings.HasSuffix(user.ProfilePic, "-me.png"))

	data, err := os.ReadFile(filepath.Join(uploads, strings.TrimPrefix(user.ProfilePic, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestGetUpdateDeleteList(t *testing.T) {
	svc, _ := newService(t)
	user, err := svc.Register(account.Registration{DisplayName: "Ani", Email: "ani@example.com", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(user.ID, "Ani R", "ani.r@example.com"))
	got, err := svc.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ani R", got.DisplayName)
	assert.Empty(t, got.Password)

	assert.ErrorIs(t, svc.Update("ghost", "a", "b"), account.ErrUserNotFound)
	_, err = svc.Get("ghost")
	assert.ErrorIs(t, err, account.ErrUserNotFound)

	users, err := svc.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)

	require.NoError(t, svc.Delete(user.ID))
	require.NoError(t, svc.Delete(user.ID))
	users, err = svc.List()
	require.NoError(t, err)
	assert.Empty(t, users)
}
