package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
)

var (
	usersBucket        = []byte("users")
	transactionsBucket = []byte("transactions")
	budgetsBucket      = []byte("budgets")
	savingsBucket      = []byte("savings")
)

// BoltStore keeps every document collection in one bbolt file, one bucket
// per collection, JSON values keyed by document id.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ finance.UserStore        = (*BoltStore)(nil)
	_ finance.TransactionStore = (*BoltStore)(nil)
	_ finance.BudgetStore      = (*BoltStore)(nil)
	_ finance.SavingStore      = (*BoltStore)(nil)
)

func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usersBucket, transactionsBucket, budgetsBucket, savingsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func put(tx *bolt.Tx, bucket []byte, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(id), data)
}

func get(tx *bolt.Tx, bucket []byte, id string, v any) error {
	data := tx.Bucket(bucket).Get([]byte(id))
	if data == nil {
		return finance.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (s *BoltStore) CreateUser(u finance.User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, usersBucket, u.ID, u)
	})
}

func (s *BoltStore) GetUser(id string) (finance.User, error) {
	var u finance.User
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, usersBucket, id, &u)
	})
	if err != nil {
		return finance.User{}, err
	}
	return u, nil
}

// FindUserByEmail scans the users bucket; the first match in key order wins.
func (s *BoltStore) FindUserByEmail(email string) (finance.User, bool, error) {
	var found finance.User
	var ok bool
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(usersBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var u finance.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("decoding user %s: %w", k, err)
			}
			if u.Email == email {
				found, ok = u, true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

func (s *BoltStore) UpdateUser(id, displayName, email string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var u finance.User
		if err := get(tx, usersBucket, id, &u); err != nil {
			return err
		}
		u.DisplayName = displayName
		u.Email = email
		return put(tx, usersBucket, id, u)
	})
}

func (s *BoltStore) DeleteUser(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucket).Delete([]byte(id))
	})
}

func (s *BoltStore) ListUsers() ([]finance.User, error) {
	users := make([]finance.User, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucket).ForEach(func(k, v []byte) error {
			var u finance.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("decoding user %s: %w", k, err)
			}
			users = append(users, u)
			return nil
		})
	})
	return users, err
}

func (s *BoltStore) CreateTransaction(t finance.Transaction) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, transactionsBucket, t.TransactionID, t)
	})
}

func (s *BoltStore) GetTransaction(id string) (finance.Transaction, error) {
	var t finance.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, transactionsBucket, id, &t)
	})
	if err != nil {
		return finance.Transaction{}, err
	}
	return t, nil
}

func (s *BoltStore) UpdateTransaction(id string, update finance.TransactionUpdate) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var t finance.Transaction
		if err := get(tx, transactionsBucket, id, &t); err != nil {
			return err
		}
		t.Type = update.Type
		t.Amount = update.Amount
		t.Category = update.Category
		t.Currency = update.Currency
		t.Account = update.Account
		t.Date = update.Date
		t.Description = update.Description
		return put(tx, transactionsBucket, id, t)
	})
}

func (s *BoltStore) DeleteTransaction(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(transactionsBucket).Delete([]byte(id))
	})
}

func (s *BoltStore) CreateBudget(b finance.Budget) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, budgetsBucket, b.BudgetID, b)
	})
}

func (s *BoltStore) CreateSaving(sv finance.Saving) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, savingsBucket, sv.SavingID, sv)
	})
}

// GetBudget and GetSaving are read paths used by tests and diagnostics.
func (s *BoltStore) GetBudget(id string) (finance.Budget, error) {
	var b finance.Budget
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, budgetsBucket, id, &b)
	})
	return b, err
}

func (s *BoltStore) GetSaving(id string) (finance.Saving, error) {
	var sv finance.Saving
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx, savingsBucket, id, &sv)
	})
	return sv, err
}
