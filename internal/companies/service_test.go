package companies

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	companies  map[int64]Company
	nextID     int64
	dependents map[int64]Dependents
	insertErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{companies: map[int64]Company{}, nextID: 1, dependents: map[int64]Dependents{}}
}

func (m *mockRepository) ListCompanies(ctx context.Context) ([]Company, error) {
	out := make([]Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) GetCompany(ctx context.Context, id int64) (Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return Company{}, shared.NotFound("Company not found.")
	}
	return c, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]Company, len(m.companies))
	for k, v := range m.companies {
		snapshot[k] = v
	}
	nextID := m.nextID
	if err := fn(ctx, m); err != nil {
		m.companies = snapshot
		m.nextID = nextID
		return err
	}
	return nil
}

func (m *mockRepository) InsertCompany(ctx context.Context, c Company) (Company, error) {
	if m.insertErr != nil {
		return Company{}, m.insertErr
	}
	c.ID = m.nextID
	m.nextID++
	m.companies[c.ID] = c
	return c, nil
}

func (m *mockRepository) UpdateCompany(ctx context.Context, c Company) error {
	if _, ok := m.companies[c.ID]; !ok {
		return shared.NotFound("Company not found.")
	}
	m.companies[c.ID] = c
	return nil
}

func (m *mockRepository) DeleteCompany(ctx context.Context, id int64) error {
	delete(m.companies, id)
	return nil
}

func (m *mockRepository) CompanyDependents(ctx context.Context, id int64) (Dependents, error) {
	deps := m.dependents[id]
	for _, c := range m.companies {
		if c.ParentID != nil && *c.ParentID == id {
			deps.Children++
		}
	}
	return deps, nil
}

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepository, *countingInvalidator) {
	t.Helper()
	repo := newMockRepository()
	inv := &countingInvalidator{}
	svc := NewService(repo, inv, nil)
	svc.WithClock(func() time.Time { return time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC) })
	return svc, repo, inv
}

func holdingInput(code, name string) CreateCompanyInput {
	return CreateCompanyInput{Code: code, Name: name, CompanyType: TypeHolding, Currency: "idr"}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateHoldingSetsRootToItself(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("hold", "H"))
	require.NoError(t, err)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, h.ID, h.RootID)
	assert.Nil(t, h.ParentID)
	assert.Equal(t, "HOLD", h.Code)
	assert.Equal(t, "IDR", h.Currency)
	assert.True(t, h.IsActive)
	assert.Equal(t, 1, inv.bumps)

	stored, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h, stored)
}

func TestCreateSubsidiaryAndBranchInheritRoot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	s, err := svc.Create(ctx, CreateCompanyInput{Code: "SUB", Name: "S", CompanyType: TypeSubsidiary, ParentID: &h.ID, Currency: "IDR"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, h.ID, s.RootID)

	b, err := svc.Create(ctx, CreateCompanyInput{Code: "BR", Name: "B", CompanyType: TypeBranch, ParentID: &s.ID, Currency: "IDR"})
	require.NoError(t, err)
	assert.Equal(t, 3, b.Level)
	assert.Equal(t, h.ID, b.RootID)
}

func TestCreateRejectsInvalidHierarchyWithoutMutation(t *testing.T) {
	svc, repo, inv := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	s, err := svc.Create(ctx, CreateCompanyInput{Code: "SUB", Name: "S", CompanyType: TypeSubsidiary, ParentID: &h.ID, Currency: "IDR"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateCompanyInput{Code: "SUB2", Name: "S2", CompanyType: TypeSubsidiary, ParentID: &s.ID, Currency: "IDR"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Subsidiaries must have a Holding company as parent.", err.Error())
	assert.Len(t, repo.companies, 2)
	assert.Equal(t, 2, inv.bumps)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, holdingInput("hold", "Other"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Company code already exists.", err.Error())
}

func TestCreateValidatesFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateCompanyInput
		msg  string
	}{
		{"missing code", CreateCompanyInput{Name: "H", CompanyType: TypeHolding, Currency: "IDR"}, "code is required."},
		{"code too long", CreateCompanyInput{Code: "ABCDEFGHIJK", Name: "H", CompanyType: TypeHolding, Currency: "IDR"}, "code must be at most 10 characters."},
		{"bad currency", CreateCompanyInput{Code: "H", Name: "H", CompanyType: TypeHolding, Currency: "XX"}, "currency must be an ISO 4217 currency code."},
		{"bad type", CreateCompanyInput{Code: "H", Name: "H", CompanyType: "division", Currency: "IDR"}, "company_type must be one of: holding subsidiary branch."},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestCreateRollsBackOnStoreFailure(t *testing.T) {
	svc, repo, inv := newTestService(t)
	repo.insertErr = errors.New("store unavailable")

	_, err := svc.Create(context.Background(), holdingInput("HOLD", "H"))
	require.Error(t, err)
	assert.Empty(t, repo.companies)
	assert.Zero(t, inv.bumps)
}

func TestUpdateKeepsStructureImmutable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	h2, err := svc.Create(ctx, holdingInput("HOLD2", "H2"))
	require.NoError(t, err)
	s, err := svc.Create(ctx, CreateCompanyInput{Code: "SUB", Name: "S", CompanyType: TypeSubsidiary, ParentID: &h.ID, Currency: "IDR"})
	require.NoError(t, err)

	name := "Renamed Sub"
	city := " Bandung "
	updated, err := svc.Update(ctx, s.ID, UpdateCompanyInput{Name: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Sub", updated.Name)
	assert.Equal(t, "Bandung", updated.City)
	assert.Equal(t, s.Level, updated.Level)
	assert.Equal(t, s.RootID, updated.RootID)

	branch := TypeBranch
	_, err = svc.Update(ctx, s.ID, UpdateCompanyInput{CompanyType: &branch})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(ctx, s.ID, UpdateCompanyInput{ParentID: &h2.ID})
	assert.ErrorIs(t, err, shared.ErrValidation)

	same := TypeSubsidiary
	_, err = svc.Update(ctx, s.ID, UpdateCompanyInput{CompanyType: &same, ParentID: &h.ID})
	assert.NoError(t, err, "restating the current structure is allowed")

	_, err = svc.Update(ctx, 999, UpdateCompanyInput{Name: &name})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteIsLeafOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	s, err := svc.Create(ctx, CreateCompanyInput{Code: "SUB", Name: "S", CompanyType: TypeSubsidiary, ParentID: &h.ID, Currency: "IDR"})
	require.NoError(t, err)

	err = svc.Delete(ctx, h.ID)
	assert.ErrorIs(t, err, shared.ErrHasChildren)
	assert.Len(t, repo.companies, 2)

	repo.dependents[s.ID] = Dependents{Accounts: 3}
	assert.ErrorIs(t, svc.Delete(ctx, s.ID), shared.ErrHasChildren)
	delete(repo.dependents, s.ID)

	require.NoError(t, svc.Delete(ctx, s.ID))
	require.NoError(t, svc.Delete(ctx, h.ID))
	assert.Empty(t, repo.companies)

	assert.ErrorIs(t, svc.Delete(ctx, h.ID), shared.ErrNotFound)
}

func TestHierarchyFromService(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.Create(ctx, holdingInput("HOLD", "H"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCompanyInput{Code: "SUB", Name: "S", CompanyType: TypeSubsidiary, ParentID: &h.ID, Currency: "IDR"})
	require.NoError(t, err)
	orphanParent := int64(77)
	repo.companies[50] = Company{ID: 50, Name: "Orphan", CompanyType: TypeBranch, ParentID: &orphanParent, Level: 3}

	forest, err := svc.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, 2, CountNodes(forest))
}
