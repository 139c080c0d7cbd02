package commands

// UserError is a validation failure on an inbound command: bad input, not a
// system fault. The transport reports it to the caller and nothing mutates.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-facing validation error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
