package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/masterdata"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// deleteOnLookup answers the existence check, then lets a company delete
// commit before the caller reaches the store.
type deleteOnLookup struct {
	store      *Store
	interleave func()
}

func (d deleteOnLookup) CompanyExists(ctx context.Context, id int64) (bool, error) {
	ok, err := d.store.CompanyExists(ctx, id)
	d.interleave()
	return ok, err
}

type accountsAfterDelete struct {
	AccountRepository
	interleave func()
}

func (r accountsAfterDelete) WithTx(ctx context.Context, fn func(ctx context.Context, tx accounts.TxRepository) error) error {
	r.interleave()
	return r.AccountRepository.WithTx(ctx, fn)
}

type eliminationsAfterDelete struct {
	EliminationRepository
	interleave func()
}

func (r eliminationsAfterDelete) WithTx(ctx context.Context, fn func(ctx context.Context, tx elimination.TxRepository) error) error {
	r.interleave()
	return r.EliminationRepository.WithTx(ctx, fn)
}

func seedGroup(t *testing.T, s *Store) (*companies.Service, companies.Company, companies.Company) {
	t.Helper()
	svc := companies.NewService(s.Companies(), nil, nil)
	ctx := context.Background()
	holding, err := svc.Create(ctx, companies.CreateCompanyInput{
		Code: "HLD", Name: "Holding", CompanyType: companies.TypeHolding, Currency: "IDR",
	})
	require.NoError(t, err)
	sub, err := svc.Create(ctx, companies.CreateCompanyInput{
		Code: "SUB", Name: "Subsidiary", CompanyType: companies.TypeSubsidiary, Currency: "IDR", ParentID: &holding.ID,
	})
	require.NoError(t, err)
	return svc, holding, sub
}

func TestWritesRecheckOwnerAfterConcurrentDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("account", func(t *testing.T) {
		s := New()
		companySvc, _, sub := seedGroup(t, s)
		repo := accountsAfterDelete{
			AccountRepository: s.Accounts(),
			interleave:        func() { require.NoError(t, companySvc.Delete(ctx, sub.ID)) },
		}
		svc := accounts.NewService(repo, s, nil, nil)

		_, err := svc.Create(ctx, sub.ID, accounts.CreateAccountInput{Code: "1000", Name: "Assets", Type: accounts.TypeAsset})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{Companies: 1}, stats)
	})

	t.Run("elimination", func(t *testing.T) {
		s := New()
		companySvc, holding, sub := seedGroup(t, s)
		repo := eliminationsAfterDelete{
			EliminationRepository: s.Eliminations(),
			interleave:            func() { require.NoError(t, companySvc.Delete(ctx, sub.ID)) },
		}
		svc := elimination.NewService(repo, nil, nil)

		_, err := svc.Create(ctx, elimination.CreateEntryInput{
			Period:          "2024-12",
			Description:     "Management fee",
			DebitAccount:    "4200",
			CreditAccount:   "5200",
			Amount:          decimal.NewFromInt(1000),
			SourceCompanyID: holding.ID,
			TargetCompanyID: sub.ID,
			EliminationType: elimination.TypeIntercompanyServices,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, "Target company not found.", err.Error())

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{Companies: 1}, stats)
	})

	t.Run("record", func(t *testing.T) {
		s := New()
		companySvc, _, sub := seedGroup(t, s)
		lookup := deleteOnLookup{store: s, interleave: func() { require.NoError(t, companySvc.Delete(ctx, sub.ID)) }}
		svc := masterdata.NewService[masterdata.Customer]("Customer", s.MasterData().Customers, lookup, nil)

		_, err := svc.Create(ctx, masterdata.Customer{Base: masterdata.Base{CompanyID: sub.ID}, Code: "C-1", Name: "Acme"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, "company_id references an unknown company.", err.Error())

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{Companies: 1}, stats)
	})
}

func TestRecordUpdateRejectsMissingOwner(t *testing.T) {
	s := New()
	ctx := context.Background()
	holding := insertCompany(t, s, companies.Company{Code: "H"})
	repo := s.MasterData().Customers

	c, err := repo.Insert(ctx, masterdata.Customer{Base: masterdata.Base{CompanyID: holding.ID}, Code: "C1"})
	require.NoError(t, err)

	c.CompanyID = 99
	err = repo.Update(ctx, c)
	assert.ErrorIs(t, err, shared.ErrValidation)

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, holding.ID, got.CompanyID)
}
