package usecase

import "fmt"

// DomainError signals a business-rule failure the caller should surface to the
// user (not found, access denied, invalid input).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError signals an infrastructure failure (storage write, broker).
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

func leadNotFound(leadID string) *DomainError {
	return &DomainError{
		Code:    "LEAD_NOT_FOUND",
		Message: fmt.Sprintf("lead %s not found", leadID),
	}
}

func accessDenied(leadID, actorID string) *DomainError {
	return &DomainError{
		Code:    "ACCESS_DENIED",
		Message: fmt.Sprintf("actor %s does not own lead %s", actorID, leadID),
	}
}
