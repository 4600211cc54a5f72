package masterdata

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// MountAll registers every record type under its plural path segment.
func MountAll(r chi.Router, repos Repositories, companies CompanyLookup, logger *slog.Logger) {
	mount(r, "/customers", NewHandler(logger, NewService[Customer]("Customer", repos.Customers, companies, logger)))
	mount(r, "/vendors", NewHandler(logger, NewService[Vendor]("Vendor", repos.Vendors, companies, logger)))
	mount(r, "/products", NewHandler(logger, NewService[Product]("Product", repos.Products, companies, logger)))
	mount(r, "/sales-orders", NewHandler(logger, NewService[SalesOrder]("Sales order", repos.SalesOrders, companies, logger)))
	mount(r, "/purchase-orders", NewHandler(logger, NewService[PurchaseOrder]("Purchase order", repos.PurchaseOrders, companies, logger)))
	mount(r, "/invoices", NewHandler(logger, NewService[Invoice]("Invoice", repos.Invoices, companies, logger)))
	mount(r, "/journal-entries", NewHandler(logger, NewService[JournalEntry]("Journal entry", repos.JournalEntries, companies, logger)))
	mount(r, "/stock", NewHandler(logger, NewService[StockItem]("Stock item", repos.StockItems, companies, logger)))
}

func mount(r chi.Router, path string, h interface{ MountRoutes(chi.Router) }) {
	r.Route(path, h.MountRoutes)
}
