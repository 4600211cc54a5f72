// Package masterdata holds the sample sales, purchasing, inventory and ledger
// records each company carries.
package masterdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Base carries the identity and ownership shared by every record.
type Base struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meta exposes the embedded base for generic code.
func (b *Base) Meta() *Base { return b }

// Record is satisfied by pointers to the record types below.
type Record[T any] interface {
	*T
	Meta() *Base
}

// Customer buys from a company.
type Customer struct {
	Base
	Code        string          `json:"code" validate:"required,max=20"`
	Name        string          `json:"name" validate:"required,max=120"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Phone       string          `json:"phone" validate:"max=40"`
	Address     string          `json:"address" validate:"max=255"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	IsActive    bool            `json:"is_active"`
}

// Vendor supplies a company.
type Vendor struct {
	Base
	Code         string `json:"code" validate:"required,max=20"`
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"max=40"`
	Address      string `json:"address" validate:"max=255"`
	PaymentTerms int    `json:"payment_terms" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
}

// Product is an item a company buys or sells.
type Product struct {
	Base
	SKU      string          `json:"sku" validate:"required,max=40"`
	Name     string          `json:"name" validate:"required,max=120"`
	Category string          `json:"category" validate:"max=60"`
	Unit     string          `json:"unit" validate:"required,max=10"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
}

// SalesOrder is an order received from a customer.
type SalesOrder struct {
	Base
	OrderNumber string          `json:"order_number" validate:"required,max=30"`
	CustomerID  int64           `json:"customer_id" validate:"required,gt=0"`
	OrderDate   time.Time       `json:"order_date"`
	Status      string          `json:"status" validate:"required,oneof=draft confirmed shipped invoiced cancelled"`
	Total       decimal.Decimal `json:"total"`
}

// PurchaseOrder is an order placed with a vendor.
type PurchaseOrder struct {
	Base
	OrderNumber string          `json:"order_number" validate:"required,max=30"`
	VendorID    int64           `json:"vendor_id" validate:"required,gt=0"`
	OrderDate   time.Time       `json:"order_date"`
	Status      string          `json:"status" validate:"required,oneof=draft approved received closed cancelled"`
	Total       decimal.Decimal `json:"total"`
}

// Invoice is a receivable or payable document.
type Invoice struct {
	Base
	InvoiceNumber  string          `json:"invoice_number" validate:"required,max=30"`
	Kind           string          `json:"kind" validate:"required,oneof=receivable payable"`
	CounterpartyID int64           `json:"counterparty_id" validate:"required,gt=0"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status" validate:"required,oneof=open paid void"`
}

// JournalLine is one side of a journal entry.
type JournalLine struct {
	AccountCode string          `json:"account_code" validate:"required,max=20"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo" validate:"max=255"`
}

// JournalEntry is a manual ledger entry kept as sample data.
type JournalEntry struct {
	Base
	EntryNumber string        `json:"entry_number" validate:"required,max=30"`
	EntryDate   time.Time     `json:"entry_date"`
	Description string        `json:"description" validate:"max=255"`
	Lines       []JournalLine `json:"lines" validate:"required,min=2,dive"`
}

// StockItem is the on-hand quantity of a product in a warehouse.
type StockItem struct {
	Base
	ProductID    int64           `json:"product_id" validate:"required,gt=0"`
	Warehouse    string          `json:"warehouse" validate:"required,max=60"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// Repository stores one record type.
type Repository[T any] interface {
	List(ctx context.Context, companyID int64) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Insert(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id int64) error
}

// CompanyLookup confirms that an owning company exists.
type CompanyLookup interface {
	CompanyExists(ctx context.Context, id int64) (bool, error)
}

// UnknownCompany reports a record whose company_id matches no company.
// Repositories return it when the owner disappears before the write.
func UnknownCompany() error {
	return shared.Validation("company_id references an unknown company.")
}

// Repositories groups the store of every record type.
type Repositories struct {
	Customers      Repository[Customer]
	Vendors        Repository[Vendor]
	Products       Repository[Product]
	SalesOrders    Repository[SalesOrder]
	PurchaseOrders Repository[PurchaseOrder]
	Invoices       Repository[Invoice]
	JournalEntries Repository[JournalEntry]
	StockItems     Repository[StockItem]
}
