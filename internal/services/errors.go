package services

import (
	"errors"
	"fmt"
)

var (
	// ErrStateMismatch - state з callback не співпадає зі збереженим
	ErrStateMismatch = errors.New("state mismatch")

	// ErrMissingRefreshToken - /token викликано без refresh token
	ErrMissingRefreshToken = errors.New("refresh token is required")

	// ErrAuthorizationDenied - провайдер повернув error замість code
	ErrAuthorizationDenied = errors.New("authorization denied by provider")
)

// ProviderExchangeError описує невдалий запит до token endpoint провайдера
type ProviderExchangeError struct {
	Grant      string
	StatusCode int
	Err        error
}

func (e *ProviderExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s exchange failed with status %d: %v", e.Grant, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s exchange failed: %v", e.Grant, e.Err)
}

func (e *ProviderExchangeError) Unwrap() error {
	return e.Err
}
