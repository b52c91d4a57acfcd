// Package apperrors defines the sentinel error values used across the
// engine. Handlers map these onto HTTP status codes; everything else
// wraps them with %w and context.
package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrSecurityNotFound indicates that a security lookup returned no results.
	ErrSecurityNotFound = errors.New("security not found")

	// ErrResultNotFound indicates that no cached risk result exists for a key.
	ErrResultNotFound = errors.New("risk result not found")

	// ErrProviderConfigNotFound indicates the price provider has not been configured.
	ErrProviderConfigNotFound = errors.New("provider configuration not found")
)

// Pipeline errors represent failures of the risk computation itself.
var (
	// ErrDataUnavailable indicates that the price provider or portfolio
	// store could not deliver data (unknown ticker, unreachable backend,
	// or a timed-out fetch). Not retried by the engine.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrDataInsufficient indicates that the available history is too
	// short for the requested computation. Components degrade where a
	// partial result is still meaningful and surface this otherwise.
	ErrDataInsufficient = errors.New("insufficient historical data")

	// ErrSingularCovariance indicates a degenerate covariance matrix.
	// The decomposition falls back to proportional-weight allocation
	// when it sees this.
	ErrSingularCovariance = errors.New("singular covariance matrix")

	// ErrUnsupportedView indicates an unknown composition dimension.
	// Rejected outright, never defaulted.
	ErrUnsupportedView = errors.New("unsupported composition view")
)

// Validation errors for request parameters.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)
