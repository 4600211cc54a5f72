package store

import (
	"context"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// tx operates on a state the caller already holds the lock for. It satisfies
// the TxRepository interfaces of companies, accounts and elimination.
type tx struct {
	st *state
}

func (t tx) ListCompanies(ctx context.Context) ([]companies.Company, error) {
	return t.st.companies.list(nil), nil
}

func (t tx) GetCompany(ctx context.Context, id int64) (companies.Company, error) {
	c, ok := t.st.companies.get(id)
	if !ok {
		return companies.Company{}, shared.NotFound("Company not found.")
	}
	return c, nil
}

func (t tx) CompanyExists(ctx context.Context, id int64) (bool, error) {
	return t.st.companies.has(id), nil
}

func (t tx) InsertCompany(ctx context.Context, c companies.Company) (companies.Company, error) {
	return t.st.companies.insert(func(id int64) companies.Company {
		c.ID = id
		return c
	}), nil
}

func (t tx) UpdateCompany(ctx context.Context, c companies.Company) error {
	if !t.st.companies.replace(c.ID, c) {
		return shared.NotFound("Company not found.")
	}
	return nil
}

func (t tx) DeleteCompany(ctx context.Context, id int64) error {
	if !t.st.companies.remove(id) {
		return shared.NotFound("Company not found.")
	}
	return nil
}

func (t tx) CompanyDependents(ctx context.Context, id int64) (companies.Dependents, error) {
	return companies.Dependents{
		Children: t.st.companies.count(func(c companies.Company) bool {
			return c.ParentID != nil && *c.ParentID == id
		}),
		Accounts: t.st.accounts.count(func(a accounts.Account) bool {
			return a.CompanyID == id
		}),
		Eliminations: t.st.eliminations.count(func(e elimination.Entry) bool {
			return e.SourceCompanyID == id || e.TargetCompanyID == id
		}),
		Records: t.st.recordsOwnedBy(id),
	}, nil
}

func (t tx) ListAccounts(ctx context.Context, companyID int64) ([]accounts.Account, error) {
	return t.st.accounts.list(func(a accounts.Account) bool { return a.CompanyID == companyID }), nil
}

func (t tx) GetAccount(ctx context.Context, id int64) (accounts.Account, error) {
	a, ok := t.st.accounts.get(id)
	if !ok {
		return accounts.Account{}, shared.NotFound("Account not found.")
	}
	return a, nil
}

func (t tx) InsertAccount(ctx context.Context, a accounts.Account) (accounts.Account, error) {
	return t.st.accounts.insert(func(id int64) accounts.Account {
		a.ID = id
		return a
	}), nil
}

func (t tx) UpdateAccount(ctx context.Context, a accounts.Account) error {
	if !t.st.accounts.replace(a.ID, a) {
		return shared.NotFound("Account not found.")
	}
	return nil
}

func (t tx) DeleteAccount(ctx context.Context, id int64) error {
	if !t.st.accounts.remove(id) {
		return shared.NotFound("Account not found.")
	}
	return nil
}

func (t tx) GetElimination(ctx context.Context, id int64) (elimination.Entry, error) {
	e, ok := t.st.eliminations.get(id)
	if !ok {
		return elimination.Entry{}, shared.NotFound("Elimination entry not found.")
	}
	return e, nil
}

func (t tx) InsertElimination(ctx context.Context, e elimination.Entry) (elimination.Entry, error) {
	return t.st.eliminations.insert(func(id int64) elimination.Entry {
		e.ID = id
		return e
	}), nil
}

func (t tx) DeleteElimination(ctx context.Context, id int64) error {
	if !t.st.eliminations.remove(id) {
		return shared.NotFound("Elimination entry not found.")
	}
	return nil
}
