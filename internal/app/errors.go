package app

import "fmt"

// DomainError is an operation failure with a fixed HTTP mapping. Code is one
// of VALIDATION_ERROR, NOT_FOUND, INVALID_STATE or UNAUTHORIZED; anything
// else reaching the handler surfaces as SERVER_ERROR via mapError.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
