package core

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// Validate guards the creation path: records admitted here always carry a
// non-empty name and a positive amount. The Normalizer stays tolerant; this
// is the one place malformed input is rejected instead of repaired.
func (p NewExpense) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !(p.Amount > 0) {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks only the fields a patch actually sets.
func (p ExpensePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Amount != nil && !(*p.Amount > 0) {
		return ErrInvalidAmount
	}
	return nil
}
