package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "data", "budgetly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := openStore(t)
	u := finance.User{ID: "u1", Email: "ani@example.com", DisplayName: "Ani", Password: "hash"}
	require.NoError(t, s.CreateUser(u))

	got, err := s.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ani", got.DisplayName)

	found, ok, err := s.FindUserByEmail("ani@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", found.ID)

	_, ok, err = s.FindUserByEmail("budi@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpdateUser("u1", "Ani R", "ani.r@example.com"))
	got, err = s.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ani R", got.DisplayName)
	assert.Equal(t, "ani.r@example.com", got.Email)
	assert.Equal(t, "hash", got.Password)

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser("u1"))
	require.NoError(t, s.DeleteUser("u1"))
	_, err = s.GetUser("u1")
	assert.ErrorIs(t, err, finance.ErrNotFound)
}

func TestUpdateMissingUser(t *testing.T) {
	s := openStore(t)
	assert.ErrorIs(t, s.UpdateUser("ghost", "x", "y"), finance.ErrNotFound)
}

func TestListUsersEmpty(t *testing.T) {
	s := openStore(t)
	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestTransactionLifecycle(t *testing.T) {
	s := openStore(t)
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tx := finance.Transaction{
		TransactionID: "t1",
		UserID:        "u1",
		Type:          "expense",
		Amount:        150000,
		Category:      "Food",
		Currency:      "IDR",
		Account:       "cash",
		Date:          date,
		Photos:        []string{"budgetly/transactions/u1/t1/a-receipt.jpg"},
	}
	require.NoError(t, s.CreateTransaction(tx))

	got, err := s.GetTransaction("t1")
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	require.NoError(t, s.UpdateTransaction("t1", finance.TransactionUpdate{
		Type: "income", Amount: 5, Category: "Gift", Currency: "USD", Account: "bank", Date: date, Description: "birthday",
	}))
	got, err = s.GetTransaction("t1")
	require.NoError(t, err)
	assert.Equal(t, "income", got.Type)
	assert.Equal(t, int64(5), got.Amount)
	assert.Equal(t, tx.Photos, got.Photos, "photos survive updates")

	assert.ErrorIs(t, s.UpdateTransaction("ghost", finance.TransactionUpdate{}), finance.ErrNotFound)

	require.NoError(t, s.DeleteTransaction("t1"))
	_, err = s.GetTransaction("t1")
	assert.ErrorIs(t, err, finance.ErrNotFound)
}

func TestBudgetsAndSavings(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.CreateBudget(finance.Budget{
		BudgetID: "b1", UserID: "u1", Category: "Food", Amount: json.RawMessage(`2000000`), MonthYear: "2024-02",
	}))
	require.NoError(t, s.CreateSaving(finance.Saving{
		SavingID: "s1", UserID: "u1", Goal: "Laptop", TargetAmount: json.RawMessage(`"15000000"`), CurrentAmount: json.RawMessage(`0`),
	}))

	b, err := s.GetBudget("b1")
	require.NoError(t, err)
	assert.JSONEq(t, `2000000`, string(b.Amount))

	sv, err := s.GetSaving("s1")
	require.NoError(t, err)
	assert.JSONEq(t, `"15000000"`, string(sv.TargetAmount))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetly.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(finance.User{ID: "u1", Email: "a@b.c"}))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetUser("u1")
	assert.NoError(t, err)
}
