// Package store keeps every entity in process memory behind a single
// read/write lock.
package store

import (
	"context"
	"sync"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/masterdata"
)

type state struct {
	companies      *Collection[companies.Company]
	accounts       *Collection[accounts.Account]
	eliminations   *Collection[elimination.Entry]
	customers      *Collection[masterdata.Customer]
	vendors        *Collection[masterdata.Vendor]
	products       *Collection[masterdata.Product]
	salesOrders    *Collection[masterdata.SalesOrder]
	purchaseOrders *Collection[masterdata.PurchaseOrder]
	invoices       *Collection[masterdata.Invoice]
	journalEntries *Collection[masterdata.JournalEntry]
	stockItems     *Collection[masterdata.StockItem]
}

func newState() *state {
	return &state{
		companies:      newCollection[companies.Company](),
		accounts:       newCollection[accounts.Account](),
		eliminations:   newCollection[elimination.Entry](),
		customers:      newCollection[masterdata.Customer](),
		vendors:        newCollection[masterdata.Vendor](),
		products:       newCollection[masterdata.Product](),
		salesOrders:    newCollection[masterdata.SalesOrder](),
		purchaseOrders: newCollection[masterdata.PurchaseOrder](),
		invoices:       newCollection[masterdata.Invoice](),
		journalEntries: newCollection[masterdata.JournalEntry](),
		stockItems:     newCollection[masterdata.StockItem](),
	}
}

func (s *state) clone() *state {
	return &state{
		companies:      s.companies.clone(),
		accounts:       s.accounts.clone(),
		eliminations:   s.eliminations.clone(),
		customers:      s.customers.clone(),
		vendors:        s.vendors.clone(),
		products:       s.products.clone(),
		salesOrders:    s.salesOrders.clone(),
		purchaseOrders: s.purchaseOrders.clone(),
		invoices:       s.invoices.clone(),
		journalEntries: s.journalEntries.clone(),
		stockItems:     s.stockItems.clone(),
	}
}

// recordsOwnedBy counts master data rows that reference a company.
func (s *state) recordsOwnedBy(companyID int64) int {
	return countOwned(s.customers, companyID) +
		countOwned(s.vendors, companyID) +
		countOwned(s.products, companyID) +
		countOwned(s.salesOrders, companyID) +
		countOwned(s.purchaseOrders, companyID) +
		countOwned(s.invoices, companyID) +
		countOwned(s.journalEntries, companyID) +
		countOwned(s.stockItems, companyID)
}

func countOwned[T any, P masterdata.Record[T]](c *Collection[T], companyID int64) int {
	return c.count(func(v T) bool { return P(&v).Meta().CompanyID == companyID })
}

// Stats reports row counts per entity type.
type Stats struct {
	Companies    int `json:"companies"`
	Accounts     int `json:"accounts"`
	Eliminations int `json:"eliminations"`
	Records      int `json:"records"`
}

// Store owns the in-memory state. Readers share a snapshot under the read
// lock; writers run against a copy that replaces the state only when the
// write succeeds.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Stats returns the current row counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := s.read(ctx, func(st *state) error {
		out = Stats{
			Companies:    st.companies.size(),
			Accounts:     st.accounts.size(),
			Eliminations: st.eliminations.size(),
			Records: st.customers.size() + st.vendors.size() + st.products.size() +
				st.salesOrders.size() + st.purchaseOrders.size() + st.invoices.size() +
				st.journalEntries.size() + st.stockItems.size(),
		}
		return nil
	})
	return out, err
}

// ListCompanies returns every company in insertion order.
func (s *Store) ListCompanies(ctx context.Context) ([]companies.Company, error) {
	var out []companies.Company
	err := s.read(ctx, func(st *state) error {
		var err error
		out, err = tx{st}.ListCompanies(ctx)
		return err
	})
	return out, err
}

// GetCompany returns a company by id.
func (s *Store) GetCompany(ctx context.Context, id int64) (companies.Company, error) {
	var out companies.Company
	err := s.read(ctx, func(st *state) error {
		var err error
		out, err = tx{st}.GetCompany(ctx, id)
		return err
	})
	return out, err
}

// CompanyExists reports whether a company id is known.
func (s *Store) CompanyExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.read(ctx, func(st *state) error {
		ok = st.companies.has(id)
		return nil
	})
	return ok, err
}

// ListAccounts returns a company's accounts in insertion order.
func (s *Store) ListAccounts(ctx context.Context, companyID int64) ([]accounts.Account, error) {
	var out []accounts.Account
	err := s.read(ctx, func(st *state) error {
		var err error
		out, err = tx{st}.ListAccounts(ctx, companyID)
		return err
	})
	return out, err
}

// GetAccount returns an account by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (accounts.Account, error) {
	var out accounts.Account
	err := s.read(ctx, func(st *state) error {
		var err error
		out, err = tx{st}.GetAccount(ctx, id)
		return err
	})
	return out, err
}

// ListEliminations returns entries for a period, or all entries when period
// is blank.
func (s *Store) ListEliminations(ctx context.Context, period string) ([]elimination.Entry, error) {
	var out []elimination.Entry
	err := s.read(ctx, func(st *state) error {
		out = st.eliminations.list(func(e elimination.Entry) bool {
			return period == "" || e.Period == period
		})
		return nil
	})
	return out, err
}

// GetElimination returns an entry by id.
func (s *Store) GetElimination(ctx context.Context, id int64) (elimination.Entry, error) {
	var out elimination.Entry
	err := s.read(ctx, func(st *state) error {
		var err error
		out, err = tx{st}.GetElimination(ctx, id)
		return err
	})
	return out, err
}

// CompanyRepository adapts the store to companies.Repository.
type CompanyRepository struct{ *Store }

// WithTx runs fn as one all-or-nothing write.
func (r CompanyRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx companies.TxRepository) error) error {
	return r.write(ctx, func(st *state) error { return fn(ctx, tx{st}) })
}

// AccountRepository adapts the store to accounts.Repository.
type AccountRepository struct{ *Store }

// WithTx runs fn as one all-or-nothing write.
func (r AccountRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx accounts.TxRepository) error) error {
	return r.write(ctx, func(st *state) error { return fn(ctx, tx{st}) })
}

// EliminationRepository adapts the store to elimination.Repository.
type EliminationRepository struct{ *Store }

// WithTx runs fn as one all-or-nothing write.
func (r EliminationRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx elimination.TxRepository) error) error {
	return r.write(ctx, func(st *state) error { return fn(ctx, tx{st}) })
}

// Companies returns the company repository view.
func (s *Store) Companies() CompanyRepository { return CompanyRepository{s} }

// Accounts returns the chart of accounts repository view.
func (s *Store) Accounts() AccountRepository { return AccountRepository{s} }

// Eliminations returns the elimination entry repository view.
func (s *Store) Eliminations() EliminationRepository { return EliminationRepository{s} }
