package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound     = errors.New("company_not_found")
	ErrTokenNotFound       = errors.New("token_not_found")
	ErrUnknownFeature      = errors.New("unknown_feature")
	ErrInvalidFeatureSet   = errors.New("invalid_feature_set")
	ErrInvalidDuration     = errors.New("invalid_duration")
	ErrInvalidCompanyID    = errors.New("invalid_company_id")
	ErrInvalidToken        = errors.New("invalid_token")
	ErrStorageUnavailable  = errors.New("storage_unavailable")
	ErrTokenSpaceExhausted = errors.New("token_space_exhausted")
)

// IsValidationError reports caller mistakes that are safe to echo back verbatim.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrUnknownFeature),
		errors.Is(err, ErrInvalidFeatureSet),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidCompanyID),
		errors.Is(err, ErrInvalidToken):
		return true
	default:
		return false
	}
}

// IsNotFound covers both company and token lookups.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) || errors.Is(err, ErrTokenNotFound)
}

// Storage wraps a collaborator failure. Domain errors pass through untouched.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) || IsNotFound(err) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
