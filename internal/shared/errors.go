package shared

import "errors"

var (
	// ErrValidation indicates rejected input or a broken hierarchy rule.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates an unresolvable id reference.
	ErrNotFound = errors.New("not found")
	// ErrHasChildren indicates a delete blocked by descendants or dependents.
	ErrHasChildren = errors.New("has dependents")
	// ErrDepthExceeded indicates a hierarchy deeper than allowed.
	ErrDepthExceeded = errors.New("depth exceeded")
	// ErrNotImplemented indicates a recognised but unsupported option.
	ErrNotImplemented = errors.New("not implemented")
)

// Error carries a user-facing message together with its error kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap exposes the kind so errors.Is works against the sentinels above.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation builds an ErrValidation error with the given message.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NotFound builds an ErrNotFound error with the given message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// HasChildren builds an ErrHasChildren error with the given message.
func HasChildren(message string) error {
	return &Error{Kind: ErrHasChildren, Message: message}
}

// DepthExceeded builds an ErrDepthExceeded error with the given message.
func DepthExceeded(message string) error {
	return &Error{Kind: ErrDepthExceeded, Message: message}
}

// NotImplemented builds an ErrNotImplemented error with the given message.
func NotImplemented(message string) error {
	return &Error{Kind: ErrNotImplemented, Message: message}
}

// UserSafeMessage returns the message of a domain error, or a generic text
// for anything that may leak internals.
func UserSafeMessage(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Error()
	}
	if errors.Is(err, ErrIdempotencyConflict) {
		return ErrIdempotencyConflict.Error()
	}
	return "internal error"
}
