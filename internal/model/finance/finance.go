package finance

import (
	"encoding/json"
	"errors"
	"io"
	"time"
)

// ErrNotFound 文档不存在
var ErrNotFound = errors.New("document not found")

// Upload is a file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// User 注册用户。Password 保存的是bcrypt哈希，对外输出前必须清空。
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Password    string    `json:"password,omitempty"`
	ProfilePic  string    `json:"profilePic"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.Password = ""
	return u
}

// Transaction 一笔收支记录
type Transaction struct {
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Category      string    `json:"category"`
	Currency      string    `json:"currency"`
	Account       string    `json:"account"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Note          string    `json:"note"`
	Photos        []string  `json:"photos"`
}

// TransactionUpdate carries the fields an update may change.
type TransactionUpdate struct {
	Type        string
	Amount      int64
	Category    string
	Currency    string
	Account     string
	Date        time.Time
	Description string
}

// Budget 每月分类预算。Amount 按客户端提交的原始JSON保存。
type Budget struct {
	BudgetID  string          `json:"budgetId"`
	UserID    string          `json:"userId"`
	Category  string          `json:"category"`
	Amount    json.RawMessage `json:"amount"`
	MonthYear string          `json:"monthYear"`
}

// Saving 储蓄目标
type Saving struct {
	SavingID      string          `json:"savingId"`
	UserID        string          `json:"userId"`
	Goal          string          `json:"goal"`
	TargetAmount  json.RawMessage `json:"targetAmount"`
	CurrentAmount json.RawMessage `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
}

// UserStore persists users.
type UserStore interface {
	CreateUser(u User) error
	GetUser(id string) (User, error)
	FindUserByEmail(email string) (User, bool, error)
	UpdateUser(id, displayName, email string) error
	DeleteUser(id string) error
	ListUsers() ([]User, error)
}

// TransactionStore persists transactions.
type TransactionStore interface {
	CreateTransaction(t Transaction) error
	GetTransaction(id string) (Transaction, error)
	UpdateTransaction(id string, update TransactionUpdate) error
	DeleteTransaction(id string) error
}

// BudgetStore persists budgets.
type BudgetStore interface {
	CreateBudget(b Budget) error
}

// SavingStore persists savings goals.
type SavingStore interface {
	CreateSaving(s Saving) error
}
