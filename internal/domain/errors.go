// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyNobleID is returned when a noble has no identifier.
	ErrEmptyNobleID = errors.New("noble ID cannot be empty")

	// ErrEmptyNobleName is returned when a noble has no name.
	ErrEmptyNobleName = errors.New("noble name cannot be empty")

	// ErrInvalidResource is returned for resource names outside the known set.
	ErrInvalidResource = errors.New("invalid resource")

	// ErrNegativeAmount is returned when a resource amount is below zero.
	ErrNegativeAmount = errors.New("resource amount cannot be negative")

	// ErrInsufficientResources is returned when a removal would overdraw a counter.
	ErrInsufficientResources = errors.New("insufficient resources")

	// ErrEmptyAchievementID is returned when unlocking an achievement without an ID.
	ErrEmptyAchievementID = errors.New("achievement ID cannot be empty")

	// ErrInvalidEffect is returned when an effect is malformed.
	ErrInvalidEffect = errors.New("invalid effect")

	// ErrEmptyTerritoryName is returned when a territory has no name.
	ErrEmptyTerritoryName = errors.New("territory name cannot be empty")

	// ErrInvalidTerritoryKind is returned for territory kinds outside the known set.
	ErrInvalidTerritoryKind = errors.New("invalid territory kind")

	// ErrUnknownTerritory is returned when a territory ID is not held.
	ErrUnknownTerritory = errors.New("territory not found")

	// ErrMaxLevel is returned when upgrading a territory already at MaxTerritoryLevel.
	ErrMaxLevel = errors.New("territory already at maximum level")
)

// IsValidationError reports whether err is caused by invalid input rather
// than by the current state of an aggregate.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrEmptyNobleID,
		ErrEmptyNobleName,
		ErrInvalidResource,
		ErrNegativeAmount,
		ErrEmptyAchievementID,
		ErrInvalidEffect,
		ErrEmptyTerritoryName,
		ErrInvalidTerritoryKind,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
