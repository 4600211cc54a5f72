package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeRevenue   AccountType = "revenue"
	TypeExpense   AccountType = "expense"
)

// MaxLevel is the deepest level of a chart of accounts.
const MaxLevel = 3

// Account models a chart of accounts node owned by one company.
type Account struct {
	ID         int64           `json:"id"`
	CompanyID  int64           `json:"company_id"`
	Code       string          `json:"account_code"`
	Name       string          `json:"name"`
	Type       AccountType     `json:"account_type"`
	ParentID   *int64          `json:"parent_id"`
	Level      int             `json:"level"`
	IsPostable bool            `json:"is_postable"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Node is an account with its children and the balance it displays. For a
// header the displayed balance is the recursive sum of its children.
type Node struct {
	Account
	DisplayBalance decimal.Decimal `json:"display_balance"`
	Children       []*Node         `json:"children"`
}

// CreateAccountInput carries the fields accepted when adding an account.
type CreateAccountInput struct {
	Code       string          `json:"account_code" validate:"required,max=20"`
	Name       string          `json:"name" validate:"required,max=120"`
	Type       AccountType     `json:"account_type" validate:"required,oneof=asset liability equity revenue expense"`
	ParentID   *int64          `json:"parent_id"`
	IsPostable bool            `json:"is_postable"`
	Balance    decimal.Decimal `json:"balance"`
}

func (in *CreateAccountInput) normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Type = AccountType(strings.ToLower(strings.TrimSpace(string(in.Type))))
}

// UpdateAccountInput patches an account's name or balance.
type UpdateAccountInput struct {
	Name    *string          `json:"name" validate:"omitempty,max=120"`
	Balance *decimal.Decimal `json:"balance"`
}

// Repository is the read/write contract the service needs from the store.
type Repository interface {
	ListAccounts(ctx context.Context, companyID int64) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the view of the store available inside a write transaction.
type TxRepository interface {
	CompanyExists(ctx context.Context, id int64) (bool, error)
	ListAccounts(ctx context.Context, companyID int64) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	InsertAccount(ctx context.Context, account Account) (Account, error)
	UpdateAccount(ctx context.Context, account Account) error
	DeleteAccount(ctx context.Context, id int64) error
}

// Invalidator drops derived data when balances change.
type Invalidator interface {
	Bump(ctx context.Context) error
}
