package masterdata

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-group/internal/shared"
)

// checker is implemented by records with rules beyond struct tags.
type checker interface {
	Check() error
}

func nonNegative(v decimal.Decimal, field string) error {
	if v.IsNegative() {
		return shared.Validation(field + " cannot be negative.")
	}
	return nil
}

// Check rejects a negative credit limit.
func (c *Customer) Check() error {
	return nonNegative(c.CreditLimit, "credit_limit")
}

// Check rejects negative prices.
func (p *Product) Check() error {
	if err := nonNegative(p.Price, "price"); err != nil {
		return err
	}
	return nonNegative(p.Cost, "cost")
}

func (o *SalesOrder) Check() error {
	return nonNegative(o.Total, "total")
}

func (o *PurchaseOrder) Check() error {
	return nonNegative(o.Total, "total")
}

// Check requires a positive amount and a due date on or after issue.
func (i *Invoice) Check() error {
	if !i.Amount.IsPositive() {
		return shared.Validation("amount must be greater than zero.")
	}
	if !i.DueDate.IsZero() && i.DueDate.Before(i.IssueDate) {
		return shared.Validation("due_date cannot be before issue_date.")
	}
	return nil
}

// Check enforces one-sided lines and equal debit and credit totals.
func (j *JournalEntry) Check() error {
	debit, credit := decimal.Zero, decimal.Zero
	for _, line := range j.Lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.Validation("Journal lines cannot carry negative amounts.")
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return shared.Validation("Each journal line must carry either a debit or a credit.")
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return shared.Validation("Journal entry is not balanced.")
	}
	return nil
}

func (s *StockItem) Check() error {
	if err := nonNegative(s.Quantity, "quantity"); err != nil {
		return err
	}
	return nonNegative(s.ReorderLevel, "reorder_level")
}
