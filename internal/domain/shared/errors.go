package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// ErrIncompleteEntity indicates a hard-required identifier is missing from
	// a raw record. The lease is skipped and logged, never retried.
	ErrIncompleteEntity = NewDomainError("INCOMPLETE_ENTITY", "Required entity identifier is missing")

	// ErrClassifierUnavailable indicates a transient scoring failure. Callers
	// retry with backoff and never substitute a default risk tier.
	ErrClassifierUnavailable = NewDomainError("CLASSIFIER_UNAVAILABLE", "Risk classifier is unavailable")

	// ErrActionDelivery indicates a retention step collaborator failed after
	// all retries. The step is marked failed and the run proceeds.
	ErrActionDelivery = NewDomainError("ACTION_DELIVERY_FAILED", "Retention action delivery failed")
)
