package companies

import (
	"context"
	"strings"
	"time"
)

// CompanyType enumerates the three fixed levels of a company group.
type CompanyType string

const (
	TypeHolding    CompanyType = "holding"
	TypeSubsidiary CompanyType = "subsidiary"
	TypeBranch     CompanyType = "branch"
)

// MaxLevel is the deepest level a company group may reach.
const MaxLevel = 3

// Level returns the hierarchy level implied by the type, or 0 when unknown.
func (t CompanyType) Level() int {
	switch t {
	case TypeHolding:
		return 1
	case TypeSubsidiary:
		return 2
	case TypeBranch:
		return 3
	default:
		return 0
	}
}

// Valid reports whether the type is one of the supported levels.
func (t CompanyType) Valid() bool {
	return t.Level() > 0
}

// Company represents a legal entity inside a company group.
type Company struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	CompanyType CompanyType `json:"company_type"`
	ParentID    *int64      `json:"parent_id"`
	RootID      int64       `json:"root_id"`
	Level       int         `json:"level"`
	Currency    string      `json:"currency"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	TaxID       string      `json:"tax_id"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HierarchyNode is a company with its direct children attached.
type HierarchyNode struct {
	Company
	Children []*HierarchyNode `json:"children"`
}

// CreateCompanyInput carries the fields accepted when creating a company.
type CreateCompanyInput struct {
	Code        string      `json:"code" validate:"required,max=10"`
	Name        string      `json:"name" validate:"required,max=120"`
	CompanyType CompanyType `json:"company_type" validate:"required,oneof=holding subsidiary branch"`
	ParentID    *int64      `json:"parent_id"`
	Currency    string      `json:"currency" validate:"required,iso4217"`
	Address     string      `json:"address" validate:"max=255"`
	City        string      `json:"city" validate:"max=120"`
	Country     string      `json:"country" validate:"max=120"`
	Phone       string      `json:"phone" validate:"max=32"`
	Email       string      `json:"email" validate:"omitempty,email"`
	TaxID       string      `json:"tax_id" validate:"max=32"`
	IsActive    *bool       `json:"is_active"`
}

func (in *CreateCompanyInput) normalize() {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Email = strings.TrimSpace(in.Email)
}

// UpdateCompanyInput patches the mutable fields of a company. CompanyType and
// ParentID are accepted only so that attempts to change them can be rejected.
type UpdateCompanyInput struct {
	Name        *string      `json:"name" validate:"omitempty,max=120"`
	Address     *string      `json:"address" validate:"omitempty,max=255"`
	City        *string      `json:"city" validate:"omitempty,max=120"`
	Country     *string      `json:"country" validate:"omitempty,max=120"`
	Phone       *string      `json:"phone" validate:"omitempty,max=32"`
	Email       *string      `json:"email" validate:"omitempty,email"`
	TaxID       *string      `json:"tax_id" validate:"omitempty,max=32"`
	IsActive    *bool        `json:"is_active"`
	CompanyType *CompanyType `json:"company_type"`
	ParentID    *int64       `json:"parent_id"`
}

// Dependents counts the records that still reference a company.
type Dependents struct {
	Children     int
	Accounts     int
	Eliminations int
	Records      int
}

// Repository is the read/write contract the service needs from the store.
type Repository interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the view of the store available inside a write transaction.
type TxRepository interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	InsertCompany(ctx context.Context, company Company) (Company, error)
	UpdateCompany(ctx context.Context, company Company) error
	DeleteCompany(ctx context.Context, id int64) error
	CompanyDependents(ctx context.Context, id int64) (Dependents, error)
}

// Invalidator drops derived data when companies change.
type Invalidator interface {
	Bump(ctx context.Context) error
}
