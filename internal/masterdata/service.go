package masterdata

import (
	"context"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Service provides validated CRUD for one record type.
type Service[T any, P Record[T]] struct {
	kind      string
	repo      Repository[T]
	companies CompanyLookup
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a record service. kind names the record in messages,
// e.g. "Customer".
func NewService[T any, P Record[T]](kind string, repo Repository[T], companies CompanyLookup, logger *slog.Logger) *Service[T, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T, P]{kind: kind, repo: repo, companies: companies, logger: logger, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service[T, P]) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// List returns records for a company, or every record when companyID is 0.
func (s *Service[T, P]) List(ctx context.Context, companyID int64) ([]T, error) {
	if companyID < 0 {
		return nil, shared.Validation("Invalid company ID.")
	}
	if companyID > 0 {
		if err := s.requireCompany(ctx, companyID, shared.NotFound("Company not found.")); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, companyID)
}

// Get returns a single record.
func (s *Service[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if id <= 0 {
		return zero, shared.Validation("Invalid " + s.kind + " ID.")
	}
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new record.
func (s *Service[T, P]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	meta := P(&record).Meta()
	meta.ID = 0
	if err := s.validate(ctx, record); err != nil {
		return zero, err
	}
	now := s.now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	return s.repo.Insert(ctx, record)
}

// Update replaces a record's fields, keeping its id and creation time.
func (s *Service[T, P]) Update(ctx context.Context, id int64, record T) (T, error) {
	var zero T
	current, err := s.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	meta := P(&record).Meta()
	meta.ID = id
	if err := s.validate(ctx, record); err != nil {
		return zero, err
	}
	meta.CreatedAt = P(&current).Meta().CreatedAt
	meta.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, record); err != nil {
		return zero, err
	}
	return record, nil
}

// Delete removes a record.
func (s *Service[T, P]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Validation("Invalid " + s.kind + " ID.")
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service[T, P]) validate(ctx context.Context, record T) error {
	if err := shared.ValidateStruct(record); err != nil {
		return err
	}
	if c, ok := any(P(&record)).(checker); ok {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return s.requireCompany(ctx, P(&record).Meta().CompanyID, UnknownCompany())
}

func (s *Service[T, P]) requireCompany(ctx context.Context, companyID int64, missing error) error {
	if s.companies == nil {
		return nil
	}
	ok, err := s.companies.CompanyExists(ctx, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}
