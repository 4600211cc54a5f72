package accounts

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// CompanyLookup confirms that an owning company exists.
type CompanyLookup interface {
	CompanyExists(ctx context.Context, id int64) (bool, error)
}

// Service manages per-company charts of accounts.
type Service struct {
	repo        Repository
	companies   CompanyLookup
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs the chart of accounts service. invalidator may be nil.
func NewService(repo Repository, companies CompanyLookup, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, companies: companies, invalidator: invalidator, logger: logger, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// List returns a company's accounts in store order.
func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	if err := s.requireCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx, companyID)
}

// Tree returns a company's chart with header balances rolled up.
func (s *Service) Tree(ctx context.Context, companyID int64) ([]*Node, error) {
	list, err := s.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return BuildTree(list), nil
}

// Create adds an account to a company's chart.
func (s *Service) Create(ctx context.Context, companyID int64, in CreateAccountInput) (Account, error) {
	if companyID <= 0 {
		return Account{}, shared.Validation("Invalid company ID.")
	}
	in.normalize()
	if err := shared.ValidateStruct(in); err != nil {
		return Account{}, err
	}
	var created Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		// The owner is checked under the write lock so a concurrent company
		// delete cannot strand the new account.
		ok, err := tx.CompanyExists(ctx, companyID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NotFound("Company not found.")
		}
		existing, err := tx.ListAccounts(ctx, companyID)
		if err != nil {
			return err
		}
		level, err := ValidateNewAccount(in, existing)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		created, err = tx.InsertAccount(ctx, Account{
			CompanyID:  companyID,
			Code:       in.Code,
			Name:       in.Name,
			Type:       in.Type,
			ParentID:   in.ParentID,
			Level:      level,
			IsPostable: in.IsPostable,
			Balance:    in.Balance,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return err
	})
	if err != nil {
		return Account{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update renames an account or replaces the balance of a postable one.
func (s *Service) Update(ctx context.Context, id int64, in UpdateAccountInput) (Account, error) {
	if id <= 0 {
		return Account{}, shared.Validation("Invalid account ID.")
	}
	if err := shared.ValidateStruct(in); err != nil {
		return Account{}, err
	}
	var updated Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return shared.Validation("name is required.")
			}
			current.Name = name
		}
		if in.Balance != nil {
			if !current.IsPostable && !in.Balance.IsZero() {
				return shared.Validation("Header accounts cannot carry a balance.")
			}
			current.Balance = *in.Balance
		}
		current.UpdatedAt = s.now().UTC()
		if err := tx.UpdateAccount(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes an account without children.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Validation("Invalid account ID.")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		siblings, err := tx.ListAccounts(ctx, current.CompanyID)
		if err != nil {
			return err
		}
		for _, a := range siblings {
			if a.ParentID != nil && *a.ParentID == id {
				return shared.HasChildren("Cannot delete an account that has child accounts.")
			}
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) requireCompany(ctx context.Context, companyID int64) error {
	if companyID <= 0 {
		return shared.Validation("Invalid company ID.")
	}
	if s.companies == nil {
		return nil
	}
	ok, err := s.companies.CompanyExists(ctx, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NotFound("Company not found.")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Error("invalidate consolidation cache", slog.Any("error", err))
	}
}
