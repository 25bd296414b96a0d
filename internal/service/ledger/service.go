package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/budgetly/budgetly/backend/internal/model/finance"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ObjectStore holds transaction photos.
type ObjectStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) error
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// TransactionInput carries the raw form values of a transaction request.
type TransactionInput struct {
	UserID      string
	Type        string
	Amount      string
	Category    string
	Date        string
	Description string
	Currency    string
	Account     string
	Note        string
	Photos      []finance.Upload
}

// BudgetInput 新增预算请求
type BudgetInput struct {
	UserID    string
	Category  string
	Amount    json.RawMessage
	MonthYear string
}

// SavingInput 新增储蓄目标请求。CurrentAmount 为空时记为0。
type SavingInput struct {
	UserID        string
	Goal          string
	TargetAmount  json.RawMessage
	CurrentAmount json.RawMessage
	Deadline      string
}

// Service 记账：交易、预算与储蓄目标
type Service struct {
	transactions finance.TransactionStore
	budgets      finance.BudgetStore
	savings      finance.SavingStore
	photos       ObjectStore
	photoURLTTL  time.Duration
}

func NewService(transactions finance.TransactionStore, budgets finance.BudgetStore, savings finance.SavingStore, photos ObjectStore, photoURLTTL time.Duration) *Service {
	return &Service{
		transactions: transactions,
		budgets:      budgets,
		savings:      savings,
		photos:       photos,
		photoURLTTL:  photoURLTTL,
	}
}

// AddTransaction stores the photos first, then the transaction referencing them.
func (s *Service) AddTransaction(ctx context.Context, in TransactionInput) (string, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return "", err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	paths := make([]string, 0, len(in.Photos))
	for _, photo := range in.Photos {
		name := fmt.Sprintf("budgetly/transactions/%s/%s/%s-%s", in.UserID, id, uuid.NewString(), filepath.Base(photo.Filename))
		if err := s.photos.Save(ctx, name, photo.Body, photo.ContentType); err != nil {
			return "", fmt.Errorf("saving photo %s: %w", photo.Filename, err)
		}
		paths = append(paths, name)
	}

	err = s.transactions.CreateTransaction(finance.Transaction{
		TransactionID: id,
		UserID:        in.UserID,
		Type:          in.Type,
		Amount:        amount,
		Category:      in.Category,
		Currency:      in.Currency,
		Account:       in.Account,
		Date:          date,
		Description:   in.Description,
		Note:          in.Note,
		Photos:        paths,
	})
	if err != nil {
		return "", err
	}

	log.Printf("[ledger] recorded transaction=%s user=%s photos=%d", id, in.UserID, len(paths))
	return id, nil
}

// UpdateTransaction replaces the editable fields. UserID, Note and Photos are kept.
func (s *Service) UpdateTransaction(id string, in TransactionInput) error {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return err
	}

	err = s.transactions.UpdateTransaction(id, finance.TransactionUpdate{
		Type:        in.Type,
		Amount:      amount,
		Category:    in.Category,
		Currency:    in.Currency,
		Account:     in.Account,
		Date:        date,
		Description: in.Description,
	})
	if errors.Is(err, finance.ErrNotFound) {
		return ErrTransactionNotFound
	}
	return err
}

func (s *Service) DeleteTransaction(id string) error {
	return s.transactions.DeleteTransaction(id)
}

func (s *Service) GetTransaction(id string) (finance.Transaction, error) {
	t, err := s.transactions.GetTransaction(id)
	if errors.Is(err, finance.ErrNotFound) {
		return finance.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// PhotoURLs signs every stored photo of a transaction.
func (s *Service) PhotoURLs(ctx context.Context, id string) ([]string, error) {
	t, err := s.GetTransaction(id)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(t.Photos))
	for _, name := range t.Photos {
		signed, err := s.photos.SignedURL(ctx, name, s.photoURLTTL)
		if err != nil {
			return nil, fmt.Errorf("signing %s: %w", name, err)
		}
		urls = append(urls, signed)
	}
	return urls, nil
}

func (s *Service) AddBudget(in BudgetInput) (string, error) {
	id := uuid.NewString()
	err := s.budgets.CreateBudget(finance.Budget{
		BudgetID:  id,
		UserID:    in.UserID,
		Category:  in.Category,
		Amount:    in.Amount,
		MonthYear: in.MonthYear,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) AddSaving(in SavingInput) (string, error) {
	deadline, err := ParseDate(in.Deadline)
	if err != nil {
		return "", err
	}

	current := in.CurrentAmount
	if len(current) == 0 {
		current = json.RawMessage("0")
	}

	id := uuid.NewString()
	err = s.savings.CreateSaving(finance.Saving{
		SavingID:      id,
		UserID:        in.UserID,
		Goal:          in.Goal,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: current,
		Deadline:      deadline,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
