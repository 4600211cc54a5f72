package elimination

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Service manages elimination entries.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs an elimination service instance.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// List returns entries for a period, or every entry when period is blank.
func (s *Service) List(ctx context.Context, period string) ([]Entry, error) {
	if period != "" {
		normalized, err := shared.NormalizePeriod(period)
		if err != nil {
			return nil, err
		}
		period = normalized
	}
	return s.repo.ListEliminations(ctx, period)
}

// Create validates and stores an entry.
func (s *Service) Create(ctx context.Context, in CreateEntryInput) (Entry, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	period, _ := shared.NormalizePeriod(in.Period)

	var created Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		source, err := lookup(ctx, tx, in.SourceCompanyID, "Source company not found.")
		if err != nil {
			return err
		}
		target, err := lookup(ctx, tx, in.TargetCompanyID, "Target company not found.")
		if err != nil {
			return err
		}
		if source.RootID != target.RootID {
			return shared.Validation("Source and target companies must belong to the same group.")
		}
		created, err = tx.InsertElimination(ctx, Entry{
			Period:          period,
			Description:     in.Description,
			DebitAccount:    in.DebitAccount,
			CreditAccount:   in.CreditAccount,
			Amount:          in.Amount,
			SourceCompanyID: in.SourceCompanyID,
			TargetCompanyID: in.TargetCompanyID,
			EliminationType: in.EliminationType,
			CreatedAt:       s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Validation("Invalid elimination ID.")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetElimination(ctx, id); err != nil {
			return err
		}
		return tx.DeleteElimination(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func lookup(ctx context.Context, tx TxRepository, id int64, missing string) (companies.Company, error) {
	company, err := tx.GetCompany(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return companies.Company{}, shared.Validation(missing)
	}
	return company, err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Error("invalidate consolidation cache", slog.Any("error", err))
	}
}
