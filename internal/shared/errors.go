package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session and account errors
	ErrUnauthenticated    = fmt.Errorf("not signed in")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrDuplicateAccount   = fmt.Errorf("an account with this email already exists")
	ErrRateLimited        = fmt.Errorf("too many attempts, try again later")
	ErrNoSession          = fmt.Errorf("no active session")

	// Backend and service errors
	ErrProvider           = fmt.Errorf("backend request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Input validation errors
	ErrValidation      = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
