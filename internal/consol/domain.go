package consol

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
)

// Scope selects the consolidation method.
type Scope string

const (
	ScopeFull         Scope = "full"
	ScopeProportional Scope = "proportional"
	ScopeEquity       Scope = "equity"
)

// Filters encapsulates query parameters for the consolidated report.
type Filters struct {
	Period   string  `json:"period"`
	Scope    Scope   `json:"scope"`
	GroupID  int64   `json:"group_id,omitempty"`
	Entities []int64 `json:"entities,omitempty"`
}

// ConsolidatedAccount is one row of the consolidated chart. Balances are keyed
// by company id.
type ConsolidatedAccount struct {
	AccountCode         string                    `json:"account_code"`
	AccountName         string                    `json:"account_name"`
	AccountType         accounts.AccountType      `json:"account_type"`
	Level               int                       `json:"level"`
	ParentCode          string                    `json:"parent_code,omitempty"`
	IsHeader            bool                      `json:"is_header"`
	Balances            map[int64]decimal.Decimal `json:"balances"`
	ConsolidatedBalance decimal.Decimal           `json:"consolidated_balance"`
	EliminationAmount   decimal.Decimal           `json:"elimination_amount"`
	NetBalance          decimal.Decimal           `json:"net_balance"`
}

// Summary totals leaf net balances per account type.
type Summary struct {
	TotalAssets              decimal.Decimal `json:"total_assets"`
	TotalLiabilities         decimal.Decimal `json:"total_liabilities"`
	TotalEquity              decimal.Decimal `json:"total_equity"`
	TotalRevenue             decimal.Decimal `json:"total_revenue"`
	TotalExpenses            decimal.Decimal `json:"total_expenses"`
	NetIncome                decimal.Decimal `json:"net_income"`
	IntercompanyEliminations decimal.Decimal `json:"intercompany_eliminations"`
}

// Result is the output of Consolidate.
type Result struct {
	Accounts []ConsolidatedAccount `json:"accounts"`
	Summary  Summary               `json:"summary"`
	Warnings []string              `json:"warnings"`
}

// Member describes a company included in a report.
type Member struct {
	ID          int64                 `json:"id"`
	Code        string                `json:"code"`
	Name        string                `json:"name"`
	CompanyType companies.CompanyType `json:"company_type"`
	Level       int                   `json:"level"`
}

// Report is the consolidated report served to clients.
type Report struct {
	Filters     Filters   `json:"filters"`
	Members     []Member  `json:"members"`
	Applied     int       `json:"eliminations_applied"`
	GeneratedAt time.Time `json:"generated_at"`
	Result
}
