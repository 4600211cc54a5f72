package store

import (
	"context"

	"github.com/odyssey-erp/odyssey-group/internal/masterdata"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// RecordRepository adapts one master data collection to masterdata.Repository.
type RecordRepository[T any, P masterdata.Record[T]] struct {
	store *Store
	kind  string
	pick  func(st *state) *Collection[T]
}

func newRecordRepository[T any, P masterdata.Record[T]](s *Store, kind string, pick func(st *state) *Collection[T]) *RecordRepository[T, P] {
	return &RecordRepository[T, P]{store: s, kind: kind, pick: pick}
}

// List returns a company's records, or every record when companyID is 0.
func (r *RecordRepository[T, P]) List(ctx context.Context, companyID int64) ([]T, error) {
	var out []T
	err := r.store.read(ctx, func(st *state) error {
		out = r.pick(st).list(func(v T) bool {
			return companyID == 0 || P(&v).Meta().CompanyID == companyID
		})
		return nil
	})
	return out, err
}

// Get returns a record by id.
func (r *RecordRepository[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.store.read(ctx, func(st *state) error {
		v, ok := r.pick(st).get(id)
		if !ok {
			return shared.NotFound(r.kind + " not found.")
		}
		out = v
		return nil
	})
	return out, err
}

// Insert assigns the next id and stores the record. The owning company must
// exist when the write lock is held.
func (r *RecordRepository[T, P]) Insert(ctx context.Context, record T) (T, error) {
	var out T
	err := r.store.write(ctx, func(st *state) error {
		if !st.companies.has(P(&record).Meta().CompanyID) {
			return masterdata.UnknownCompany()
		}
		out = r.pick(st).insert(func(id int64) T {
			P(&record).Meta().ID = id
			return record
		})
		return nil
	})
	return out, err
}

// Update replaces the record with the same id.
func (r *RecordRepository[T, P]) Update(ctx context.Context, record T) error {
	return r.store.write(ctx, func(st *state) error {
		if !st.companies.has(P(&record).Meta().CompanyID) {
			return masterdata.UnknownCompany()
		}
		if !r.pick(st).replace(P(&record).Meta().ID, record) {
			return shared.NotFound(r.kind + " not found.")
		}
		return nil
	})
}

// Delete removes a record.
func (r *RecordRepository[T, P]) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if !r.pick(st).remove(id) {
			return shared.NotFound(r.kind + " not found.")
		}
		return nil
	})
}

// MasterData returns repositories for every master data record type.
func (s *Store) MasterData() masterdata.Repositories {
	return masterdata.Repositories{
		Customers: newRecordRepository[masterdata.Customer](s, "Customer",
			func(st *state) *Collection[masterdata.Customer] { return st.customers }),
		Vendors: newRecordRepository[masterdata.Vendor](s, "Vendor",
			func(st *state) *Collection[masterdata.Vendor] { return st.vendors }),
		Products: newRecordRepository[masterdata.Product](s, "Product",
			func(st *state) *Collection[masterdata.Product] { return st.products }),
		SalesOrders: newRecordRepository[masterdata.SalesOrder](s, "Sales order",
			func(st *state) *Collection[masterdata.SalesOrder] { return st.salesOrders }),
		PurchaseOrders: newRecordRepository[masterdata.PurchaseOrder](s, "Purchase order",
			func(st *state) *Collection[masterdata.PurchaseOrder] { return st.purchaseOrders }),
		Invoices: newRecordRepository[masterdata.Invoice](s, "Invoice",
			func(st *state) *Collection[masterdata.Invoice] { return st.invoices }),
		JournalEntries: newRecordRepository[masterdata.JournalEntry](s, "Journal entry",
			func(st *state) *Collection[masterdata.JournalEntry] { return st.journalEntries }),
		StockItems: newRecordRepository[masterdata.StockItem](s, "Stock item",
			func(st *state) *Collection[masterdata.StockItem] { return st.stockItems }),
	}
}
