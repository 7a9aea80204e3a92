package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrAuthCancelled = fmt.Errorf("authorization cancelled")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// Workflow errors
	ErrInvalidTransition = fmt.Errorf("invalid transition")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMixNotFound        = fmt.Errorf("mix not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
