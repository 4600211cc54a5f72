package elimination

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Type classifies an intercompany elimination.
type Type string

const (
	TypeReceivablePayable    Type = "receivable_payable"
	TypeIntercompanyBalance  Type = "intercompany_balance"
	TypeInvestmentEquity     Type = "investment_equity"
	TypeIntercompanySales    Type = "intercompany_sales"
	TypeIntercompanyServices Type = "intercompany_services"
	TypeUnrealizedProfit     Type = "unrealized_profit"
)

// Entry removes an intercompany amount from the consolidated view for one
// period.
type Entry struct {
	ID              int64           `json:"id"`
	Period          string          `json:"period"`
	Description     string          `json:"description"`
	DebitAccount    string          `json:"debit_account"`
	CreditAccount   string          `json:"credit_account"`
	Amount          decimal.Decimal `json:"amount"`
	SourceCompanyID int64           `json:"source_company_id"`
	TargetCompanyID int64           `json:"target_company_id"`
	EliminationType Type            `json:"elimination_type"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Touches reports whether the entry debits or credits the account code.
func (e Entry) Touches(code string) bool {
	return e.DebitAccount == code || e.CreditAccount == code
}

// CreateEntryInput validates a new elimination entry.
type CreateEntryInput struct {
	Period          string          `json:"period" validate:"required"`
	Description     string          `json:"description" validate:"max=255"`
	DebitAccount    string          `json:"debit_account" validate:"required,max=20"`
	CreditAccount   string          `json:"credit_account" validate:"required,max=20"`
	Amount          decimal.Decimal `json:"amount"`
	SourceCompanyID int64           `json:"source_company_id" validate:"required"`
	TargetCompanyID int64           `json:"target_company_id" validate:"required"`
	EliminationType Type            `json:"elimination_type" validate:"required,oneof=receivable_payable intercompany_balance investment_equity intercompany_sales intercompany_services unrealized_profit"`
}

func (in *CreateEntryInput) normalize() {
	in.Period = strings.TrimSpace(in.Period)
	in.Description = strings.TrimSpace(in.Description)
	in.DebitAccount = strings.TrimSpace(in.DebitAccount)
	in.CreditAccount = strings.TrimSpace(in.CreditAccount)
	in.EliminationType = Type(strings.ToLower(strings.TrimSpace(string(in.EliminationType))))
}

// Validate ensures the request is coherent on its own.
func (in CreateEntryInput) Validate() error {
	if err := shared.ValidateStruct(in); err != nil {
		return err
	}
	if _, err := shared.NormalizePeriod(in.Period); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return shared.Validation("Elimination amount must be greater than zero.")
	}
	if in.SourceCompanyID == in.TargetCompanyID {
		return shared.Validation("Source and target companies must differ.")
	}
	if in.DebitAccount == in.CreditAccount {
		return shared.Validation("Debit and credit accounts must differ.")
	}
	return nil
}

// Repository is the read/write contract for elimination entries.
type Repository interface {
	ListEliminations(ctx context.Context, period string) ([]Entry, error)
	GetElimination(ctx context.Context, id int64) (Entry, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the transactional view of the store.
type TxRepository interface {
	GetCompany(ctx context.Context, id int64) (companies.Company, error)
	GetElimination(ctx context.Context, id int64) (Entry, error)
	InsertElimination(ctx context.Context, entry Entry) (Entry, error)
	DeleteElimination(ctx context.Context, id int64) error
}

// Invalidator drops cached consolidation reports.
type Invalidator interface {
	Bump(ctx context.Context) error
}
