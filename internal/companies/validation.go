package companies

import (
	"strings"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// Metadata holds the derived position of a company inside its group.
// RootID is zero for a new holding; it becomes the holding's own id once the
// store has assigned one.
type Metadata struct {
	RootID int64
	Level  int
}

// ValidateCompanyHierarchy enforces the holding -> subsidiary -> branch chain.
func ValidateCompanyHierarchy(companyType CompanyType, parentID *int64, existing []Company) error {
	if !companyType.Valid() {
		return shared.Validation("Invalid company type.")
	}
	if companyType == TypeHolding {
		if parentID != nil {
			return shared.Validation("Holding companies cannot have a parent.")
		}
		return nil
	}
	if parentID == nil {
		return shared.Validation("Subsidiary and Branch companies must have a parent")
	}
	parent, ok := findCompany(existing, *parentID)
	if !ok {
		return shared.Validation("Parent company not found.")
	}
	switch companyType {
	case TypeSubsidiary:
		if parent.CompanyType != TypeHolding {
			return shared.Validation("Subsidiaries must have a Holding company as parent.")
		}
	case TypeBranch:
		if parent.CompanyType != TypeSubsidiary {
			return shared.Validation("Branches must have a Subsidiary company as parent.")
		}
	}
	return nil
}

// CalculateCompanyMetadata derives level and root for a company placed under
// parentID. The root is copied from the parent, never recomputed by walking.
func CalculateCompanyMetadata(parentID *int64, existing []Company) (Metadata, error) {
	if parentID == nil {
		return Metadata{Level: 1}, nil
	}
	parent, ok := findCompany(existing, *parentID)
	if !ok {
		return Metadata{}, shared.Validation("Parent company not found.")
	}
	level := parent.Level + 1
	if level > MaxLevel {
		return Metadata{}, shared.DepthExceeded("Company hierarchy cannot exceed 3 levels.")
	}
	return Metadata{RootID: parent.RootID, Level: level}, nil
}

func validateUniqueCode(code string, existing []Company) error {
	for _, c := range existing {
		if strings.EqualFold(c.Code, code) {
			return shared.Validation("Company code already exists.")
		}
	}
	return nil
}

func findCompany(list []Company, id int64) (Company, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}
