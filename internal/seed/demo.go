// Package seed loads the illustrative group used by demos and tests.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/masterdata"
)

// DemoPeriod is the reporting period the demo eliminations belong to.
const DemoPeriod = "2024-12"

// Services are the write paths the seed goes through, so every row passes the
// same validation as API input.
type Services struct {
	Companies    *companies.Service
	Accounts     *accounts.Service
	Eliminations *elimination.Service
	Records      masterdata.Repositories
	Lookup       masterdata.CompanyLookup
}

// Result lists the ids of the seeded companies by code.
type Result struct {
	Companies map[string]int64
}

type chartLine struct {
	code     string
	name     string
	typ      accounts.AccountType
	parent   string
	postable bool
}

var chartTemplate = []chartLine{
	{"1000", "Assets", accounts.TypeAsset, "", false},
	{"1100", "Current Assets", accounts.TypeAsset, "1000", false},
	{"1110", "Cash and Bank", accounts.TypeAsset, "1100", true},
	{"1120", "Accounts Receivable", accounts.TypeAsset, "1100", true},
	{"1130", "Inventory", accounts.TypeAsset, "1100", true},
	{"1200", "Non-current Assets", accounts.TypeAsset, "1000", false},
	{"1210", "Equipment", accounts.TypeAsset, "1200", true},
	{"1250", "Investment in Subsidiaries", accounts.TypeAsset, "1200", true},
	{"2000", "Liabilities", accounts.TypeLiability, "", false},
	{"2100", "Current Liabilities", accounts.TypeLiability, "2000", false},
	{"2110", "Accounts Payable", accounts.TypeLiability, "2100", true},
	{"2120", "Accrued Expenses", accounts.TypeLiability, "2100", true},
	{"3000", "Equity", accounts.TypeEquity, "", false},
	{"3100", "Share Capital", accounts.TypeEquity, "3000", true},
	{"3200", "Retained Earnings", accounts.TypeEquity, "3000", true},
	{"4000", "Revenue", accounts.TypeRevenue, "", false},
	{"4100", "Sales Revenue", accounts.TypeRevenue, "4000", true},
	{"4200", "Service Revenue", accounts.TypeRevenue, "4000", true},
	{"5000", "Expenses", accounts.TypeExpense, "", false},
	{"5100", "Cost of Goods Sold", accounts.TypeExpense, "5000", true},
	{"5200", "Operating Expenses", accounts.TypeExpense, "5000", true},
}

type companySeed struct {
	code     string
	name     string
	typ      companies.CompanyType
	parent   string
	city     string
	balances map[string]int64
}

var groupSeed = []companySeed{
	{
		code: "HLD", name: "Odyssey Holding", typ: companies.TypeHolding, city: "Jakarta",
		balances: map[string]int64{
			"1110": 1200000, "1120": 400000, "1210": 800000, "1250": 1500000,
			"2110": 300000, "2120": 100000,
			"3100": 3000000, "3200": 500000,
			"4200": 450000, "5200": 450000,
		},
	},
	{
		code: "TRD", name: "Odyssey Trading", typ: companies.TypeSubsidiary, parent: "HLD", city: "Surabaya",
		balances: map[string]int64{
			"1110": 450000, "1120": 350000, "1130": 600000, "1210": 250000,
			"2110": 240000, "2120": 60000,
			"3100": 1000000, "3200": 350000,
			"4100": 2100000, "5100": 1500000, "5200": 400000,
		},
	},
	{
		code: "MFG", name: "Odyssey Manufacturing", typ: companies.TypeSubsidiary, parent: "HLD", city: "Bekasi",
		balances: map[string]int64{
			"1110": 300000, "1120": 200000, "1130": 450000, "1210": 900000,
			"2110": 150000, "2120": 50000,
			"3100": 500000, "3200": 1150000,
			"4100": 1600000, "5100": 1100000, "5200": 300000,
		},
	},
	{
		code: "TRD-SBY", name: "Odyssey Trading Surabaya", typ: companies.TypeBranch, parent: "TRD", city: "Surabaya",
	},
}

// Demo creates the demo group: a holding with two subsidiaries and a branch,
// their charts of accounts, the period's eliminations and sample records.
func Demo(ctx context.Context, svc Services) (Result, error) {
	ids := make(map[string]int64, len(groupSeed))
	for _, cs := range groupSeed {
		in := companies.CreateCompanyInput{
			Code:        cs.code,
			Name:        cs.name,
			CompanyType: cs.typ,
			Currency:    "IDR",
			City:        cs.city,
			Country:     "Indonesia",
		}
		if cs.parent != "" {
			parentID := ids[cs.parent]
			in.ParentID = &parentID
		}
		created, err := svc.Companies.Create(ctx, in)
		if err != nil {
			return Result{}, fmt.Errorf("seed: company %s: %w", cs.code, err)
		}
		ids[cs.code] = created.ID
		if cs.balances == nil {
			continue
		}
		if err := seedChart(ctx, svc.Accounts, created.ID, cs.balances); err != nil {
			return Result{}, fmt.Errorf("seed: chart %s: %w", cs.code, err)
		}
	}

	entries := []elimination.CreateEntryInput{
		{
			Description:     "Trading receivable from Manufacturing",
			DebitAccount:    "2110",
			CreditAccount:   "1120",
			Amount:          decimal.NewFromInt(85000),
			SourceCompanyID: ids["TRD"],
			TargetCompanyID: ids["MFG"],
			EliminationType: elimination.TypeReceivablePayable,
		},
		{
			Description:     "Intercompany sales of raw materials",
			DebitAccount:    "4100",
			CreditAccount:   "5100",
			Amount:          decimal.NewFromInt(120000),
			SourceCompanyID: ids["MFG"],
			TargetCompanyID: ids["TRD"],
			EliminationType: elimination.TypeIntercompanySales,
		},
	}
	for _, in := range entries {
		in.Period = DemoPeriod
		if _, err := svc.Eliminations.Create(ctx, in); err != nil {
			return Result{}, fmt.Errorf("seed: elimination %q: %w", in.Description, err)
		}
	}

	if err := seedRecords(ctx, svc.Records, svc.Lookup, ids["TRD"]); err != nil {
		return Result{}, err
	}
	return Result{Companies: ids}, nil
}

func seedChart(ctx context.Context, svc *accounts.Service, companyID int64, balances map[string]int64) error {
	accountIDs := make(map[string]int64, len(chartTemplate))
	for _, line := range chartTemplate {
		in := accounts.CreateAccountInput{
			Code:       line.code,
			Name:       line.name,
			Type:       line.typ,
			IsPostable: line.postable,
		}
		if line.parent != "" {
			parentID := accountIDs[line.parent]
			in.ParentID = &parentID
		}
		if line.postable {
			in.Balance = decimal.NewFromInt(balances[line.code])
		}
		created, err := svc.Create(ctx, companyID, in)
		if err != nil {
			return fmt.Errorf("account %s: %w", line.code, err)
		}
		accountIDs[line.code] = created.ID
	}
	return nil
}

func seedRecords(ctx context.Context, repos masterdata.Repositories, lookup masterdata.CompanyLookup, companyID int64) error {
	base := masterdata.Base{CompanyID: companyID}
	day := time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC)

	customer, err := create(ctx, "Customer", repos.Customers, lookup, masterdata.Customer{Base: base, Code: "CUST-001", Name: "Toko Sinar Jaya", Email: "purchasing@sinarjaya.example", CreditLimit: decimal.NewFromInt(250000), IsActive: true})
	if err != nil {
		return fmt.Errorf("seed: customer: %w", err)
	}
	vendor, err := create(ctx, "Vendor", repos.Vendors, lookup, masterdata.Vendor{Base: base, Code: "VEND-001", Name: "PT Bahan Baku Nusantara", PaymentTerms: 30, IsActive: true})
	if err != nil {
		return fmt.Errorf("seed: vendor: %w", err)
	}
	product, err := create(ctx, "Product", repos.Products, lookup, masterdata.Product{Base: base, SKU: "SKU-1001", Name: "Steel Bracket", Category: "Hardware", Unit: "pcs", Price: decimal.NewFromInt(45), Cost: decimal.NewFromInt(30)})
	if err != nil {
		return fmt.Errorf("seed: product: %w", err)
	}
	if _, err := create(ctx, "Sales order", repos.SalesOrders, lookup, masterdata.SalesOrder{Base: base, OrderNumber: "SO-2024-0001", CustomerID: customer.ID, OrderDate: day, Status: "confirmed", Total: decimal.NewFromInt(45000)}); err != nil {
		return fmt.Errorf("seed: sales order: %w", err)
	}
	if _, err := create(ctx, "Purchase order", repos.PurchaseOrders, lookup, masterdata.PurchaseOrder{Base: base, OrderNumber: "PO-2024-0001", VendorID: vendor.ID, OrderDate: day, Status: "approved", Total: decimal.NewFromInt(30000)}); err != nil {
		return fmt.Errorf("seed: purchase order: %w", err)
	}
	if _, err := create(ctx, "Invoice", repos.Invoices, lookup, masterdata.Invoice{Base: base, InvoiceNumber: "INV-2024-0001", Kind: "receivable", CounterpartyID: customer.ID, IssueDate: day, DueDate: day.AddDate(0, 0, 30), Amount: decimal.NewFromInt(45000), Status: "open"}); err != nil {
		return fmt.Errorf("seed: invoice: %w", err)
	}
	if _, err := create(ctx, "Journal entry", repos.JournalEntries, lookup, masterdata.JournalEntry{Base: base, EntryNumber: "JE-2024-0001", EntryDate: day, Description: "Sale to Toko Sinar Jaya", Lines: []masterdata.JournalLine{
		{AccountCode: "1120", Debit: decimal.NewFromInt(45000)},
		{AccountCode: "4100", Credit: decimal.NewFromInt(45000)},
	}}); err != nil {
		return fmt.Errorf("seed: journal entry: %w", err)
	}
	if _, err := create(ctx, "Stock item", repos.StockItems, lookup, masterdata.StockItem{Base: base, ProductID: product.ID, Warehouse: "Surabaya DC", Quantity: decimal.NewFromInt(1200), ReorderLevel: decimal.NewFromInt(200)}); err != nil {
		return fmt.Errorf("seed: stock item: %w", err)
	}
	return nil
}

func create[T any, P masterdata.Record[T]](ctx context.Context, kind string, repo masterdata.Repository[T], lookup masterdata.CompanyLookup, record T) (T, error) {
	return masterdata.NewService[T, P](kind, repo, lookup, nil).Create(ctx, record)
}
