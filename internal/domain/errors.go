package domain

import "fmt"

// ContractError reports a runtime adapter that fails the capability
// contract. Method names the first required operation the adapter does not
// expose, so misconfiguration surfaces before any request is attempted.
type ContractError struct {
	Method string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("runtime adapter missing method %s()", e.Method)
}

// TransportError wraps a network or upstream failure from the production
// runtime adapter. The adapter performs no retry; the error propagates to
// the caller unmodified.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runtime request failed: %v", e.Err)
	}
	return fmt.Sprintf("runtime returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap supports errors.Is/As chains.
func (e *TransportError) Unwrap() error {
	return e.Err
}
