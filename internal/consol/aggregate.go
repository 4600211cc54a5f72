package consol

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
)

type rowMeta struct {
	name       string
	typ        accounts.AccountType
	level      int
	parentCode string
	postable   bool
}

// Consolidate merges per-company charts into one chart keyed by account code
// and applies the elimination entries to the matching leaf rows. It is pure:
// identical inputs produce deep-equal results.
func Consolidate(accountsByCompany map[int64][]accounts.Account, eliminations []elimination.Entry) Result {
	companyIDs := make([]int64, 0, len(accountsByCompany))
	for id := range accountsByCompany {
		companyIDs = append(companyIDs, id)
	}
	sort.Slice(companyIDs, func(i, j int) bool { return companyIDs[i] < companyIDs[j] })

	meta := make(map[string]rowMeta)
	raw := make(map[string]map[int64]decimal.Decimal)
	for _, companyID := range companyIDs {
		list := accountsByCompany[companyID]
		codeByID := make(map[int64]string, len(list))
		for _, a := range list {
			codeByID[a.ID] = a.Code
		}
		for _, a := range list {
			if _, seen := meta[a.Code]; !seen {
				parentCode := ""
				if a.ParentID != nil {
					parentCode = codeByID[*a.ParentID]
				}
				meta[a.Code] = rowMeta{name: a.Name, typ: a.Type, level: a.Level, parentCode: parentCode, postable: a.IsPostable}
			}
			balances, ok := raw[a.Code]
			if !ok {
				balances = make(map[int64]decimal.Decimal)
				raw[a.Code] = balances
			}
			balances[companyID] = balances[companyID].Add(a.Balance)
		}
	}

	codes := make([]string, 0, len(meta))
	children := make(map[string][]string)
	for code, m := range meta {
		codes = append(codes, code)
		if m.parentCode != "" {
			children[m.parentCode] = append(children[m.parentCode], code)
		}
	}
	sort.Strings(codes)
	for parent := range children {
		sort.Strings(children[parent])
	}

	rows := make(map[string]ConsolidatedAccount, len(codes))
	for _, code := range codes {
		m := meta[code]
		if !m.postable {
			continue
		}
		row := ConsolidatedAccount{
			AccountCode:       code,
			AccountName:       m.name,
			AccountType:       m.typ,
			Level:             m.level,
			ParentCode:        m.parentCode,
			Balances:          make(map[int64]decimal.Decimal, len(raw[code])),
			EliminationAmount: decimal.Zero,
		}
		total := decimal.Zero
		for companyID, amount := range raw[code] {
			row.Balances[companyID] = amount
			total = total.Add(amount)
		}
		row.ConsolidatedBalance = total
		for _, e := range eliminations {
			if e.Touches(code) {
				row.EliminationAmount = row.EliminationAmount.Sub(e.Amount)
			}
		}
		row.NetBalance = row.ConsolidatedBalance.Add(row.EliminationAmount)
		rows[code] = row
	}

	for _, code := range codes {
		m := meta[code]
		if m.postable {
			continue
		}
		row := ConsolidatedAccount{
			AccountCode:         code,
			AccountName:         m.name,
			AccountType:         m.typ,
			Level:               m.level,
			ParentCode:          m.parentCode,
			IsHeader:            true,
			Balances:            make(map[int64]decimal.Decimal),
			ConsolidatedBalance: decimal.Zero,
			EliminationAmount:   decimal.Zero,
			NetBalance:          decimal.Zero,
		}
		for _, leafCode := range descendantLeaves(code, children, meta) {
			leaf := rows[leafCode]
			for companyID, amount := range leaf.Balances {
				row.Balances[companyID] = row.Balances[companyID].Add(amount)
			}
			row.ConsolidatedBalance = row.ConsolidatedBalance.Add(leaf.ConsolidatedBalance)
			row.EliminationAmount = row.EliminationAmount.Add(leaf.EliminationAmount)
			row.NetBalance = row.NetBalance.Add(leaf.NetBalance)
		}
		rows[code] = row
	}

	result := Result{
		Accounts: make([]ConsolidatedAccount, 0, len(codes)),
		Warnings: []string{},
		Summary: Summary{
			TotalAssets:              decimal.Zero,
			TotalLiabilities:         decimal.Zero,
			TotalEquity:              decimal.Zero,
			TotalRevenue:             decimal.Zero,
			TotalExpenses:            decimal.Zero,
			IntercompanyEliminations: decimal.Zero,
		},
	}
	for _, code := range codes {
		row := rows[code]
		result.Accounts = append(result.Accounts, row)
		if row.IsHeader {
			continue
		}
		switch row.AccountType {
		case accounts.TypeAsset:
			result.Summary.TotalAssets = result.Summary.TotalAssets.Add(row.NetBalance)
		case accounts.TypeLiability:
			result.Summary.TotalLiabilities = result.Summary.TotalLiabilities.Add(row.NetBalance)
		case accounts.TypeEquity:
			result.Summary.TotalEquity = result.Summary.TotalEquity.Add(row.NetBalance)
		case accounts.TypeRevenue:
			result.Summary.TotalRevenue = result.Summary.TotalRevenue.Add(row.NetBalance)
		case accounts.TypeExpense:
			result.Summary.TotalExpenses = result.Summary.TotalExpenses.Add(row.NetBalance)
		}
	}
	result.Summary.NetIncome = result.Summary.TotalRevenue.Sub(result.Summary.TotalExpenses)

	for _, e := range eliminations {
		result.Summary.IntercompanyEliminations = result.Summary.IntercompanyEliminations.Add(e.Amount)
		if !matchesLeaf(e, meta) {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Elimination %d (%s/%s) matches no consolidated account.", e.ID, e.DebitAccount, e.CreditAccount))
		}
	}
	return result
}

// descendantLeaves lists the postable codes below code. Codes already visited
// are skipped so parent cycles across companies cannot recurse forever.
func descendantLeaves(code string, children map[string][]string, meta map[string]rowMeta) []string {
	leaves := make([]string, 0)
	visited := map[string]bool{code: true}
	stack := append([]string(nil), children[code]...)
	for len(stack) > 0 {
		next := stack[0]
		stack = stack[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		if meta[next].postable {
			leaves = append(leaves, next)
			continue
		}
		stack = append(stack, children[next]...)
	}
	sort.Strings(leaves)
	return leaves
}

func matchesLeaf(e elimination.Entry, meta map[string]rowMeta) bool {
	for _, code := range []string{e.DebitAccount, e.CreditAccount} {
		if m, ok := meta[code]; ok && m.postable {
			return true
		}
	}
	return false
}
