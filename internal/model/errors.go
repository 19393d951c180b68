package model

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the application
var (
	// Request errors
	ErrInvalidInput = errors.New("invalid input")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Purchase errors
	ErrUnknownUpgrade        = errors.New("unknown upgrade")
	ErrMissingRequirements   = errors.New("missing requirements")
	ErrOwnershipLimitReached = errors.New("ownership limit reached")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrAlreadyOwned          = errors.New("upgrade already owned")

	// Storage errors
	ErrPersistenceFailure = errors.New("persistence failure")
)

// MissingRequirementsError lists prerequisite upgrades a purchase is missing
type MissingRequirementsError struct {
	Missing []string
}

func (e *MissingRequirementsError) Error() string {
	return fmt.Sprintf("missing requirements: %s", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match ErrMissingRequirements
func (e *MissingRequirementsError) Is(target error) bool {
	return target == ErrMissingRequirements
}

// OwnershipLimitError reports the cap that blocked a purchase
type OwnershipLimitError struct {
	UpgradeID string
	Limit     int
}

func (e *OwnershipLimitError) Error() string {
	return fmt.Sprintf("ownership limit reached: %s (max %d)", e.UpgradeID, e.Limit)
}

func (e *OwnershipLimitError) Is(target error) bool {
	return target == ErrOwnershipLimitReached
}
