package companies

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Service orchestrates company lifecycle and hierarchy reads.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a company service. invalidator may be nil.
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

// List returns every company in store order.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

// Get returns a single company.
func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, shared.Validation("Invalid company ID.")
	}
	return s.repo.GetCompany(ctx, id)
}

// Hierarchy returns the company forest.
func (s *Service) Hierarchy(ctx context.Context) ([]*HierarchyNode, error) {
	list, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	forest := BuildHierarchy(list)
	if placed := CountNodes(forest); placed != len(list) {
		for _, orphan := range Orphans(list) {
			s.logger.Warn("company left out of hierarchy", slog.Int64("company_id", orphan.ID), slog.Any("parent_id", orphan.ParentID))
		}
	}
	return forest, nil
}

// Create validates and stores a new company.
func (s *Service) Create(ctx context.Context, in CreateCompanyInput) (Company, error) {
	in.normalize()
	if err := shared.ValidateStruct(in); err != nil {
		return Company{}, err
	}
	var created Company
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.ListCompanies(ctx)
		if err != nil {
			return err
		}
		if err := ValidateCompanyHierarchy(in.CompanyType, in.ParentID, existing); err != nil {
			return err
		}
		if err := validateUniqueCode(in.Code, existing); err != nil {
			return err
		}
		meta, err := CalculateCompanyMetadata(in.ParentID, existing)
		if err != nil {
			return err
		}
		if meta.Level != in.CompanyType.Level() {
			return shared.Validation("Company type does not match its hierarchy level.")
		}
		now := s.now().UTC()
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		created, err = tx.InsertCompany(ctx, Company{
			Code:        in.Code,
			Name:        in.Name,
			CompanyType: in.CompanyType,
			ParentID:    in.ParentID,
			RootID:      meta.RootID,
			Level:       meta.Level,
			Currency:    in.Currency,
			Address:     in.Address,
			City:        in.City,
			Country:     in.Country,
			Phone:       in.Phone,
			Email:       in.Email,
			TaxID:       in.TaxID,
			IsActive:    active,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		if created.RootID == 0 {
			created.RootID = created.ID
			return tx.UpdateCompany(ctx, created)
		}
		return nil
	})
	if err != nil {
		return Company{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update patches contact and metadata fields. Type, parent, level and root
// are immutable.
func (s *Service) Update(ctx context.Context, id int64, in UpdateCompanyInput) (Company, error) {
	if id <= 0 {
		return Company{}, shared.Validation("Invalid company ID.")
	}
	if err := shared.ValidateStruct(in); err != nil {
		return Company{}, err
	}
	var updated Company
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetCompany(ctx, id)
		if err != nil {
			return err
		}
		if in.CompanyType != nil && *in.CompanyType != current.CompanyType {
			return shared.Validation("Company type cannot be changed.")
		}
		if in.ParentID != nil && (current.ParentID == nil || *in.ParentID != *current.ParentID) {
			return shared.Validation("Parent company cannot be changed.")
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return shared.Validation("name is required.")
			}
			current.Name = name
		}
		applyString(&current.Address, in.Address)
		applyString(&current.City, in.City)
		applyString(&current.Country, in.Country)
		applyString(&current.Phone, in.Phone)
		applyString(&current.Email, in.Email)
		applyString(&current.TaxID, in.TaxID)
		if in.IsActive != nil {
			current.IsActive = *in.IsActive
		}
		current.UpdatedAt = s.now().UTC()
		if err := tx.UpdateCompany(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return Company{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a company that nothing references any more.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.Validation("Invalid company ID.")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetCompany(ctx, id); err != nil {
			return err
		}
		deps, err := tx.CompanyDependents(ctx, id)
		if err != nil {
			return err
		}
		if deps.Children > 0 {
			return shared.HasChildren("Cannot delete a company that has subsidiaries or branches.")
		}
		if deps.Accounts > 0 || deps.Eliminations > 0 || deps.Records > 0 {
			return shared.HasChildren("Cannot delete a company that still has accounts, eliminations or records.")
		}
		return tx.DeleteCompany(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
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

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
