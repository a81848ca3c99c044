package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Deck errors
	ErrInvalidDeck  = fmt.Errorf("invalid deck")
	ErrDeckNotFound = fmt.Errorf("deck not found")

	// Export errors
	ErrUnsupportedFormat = fmt.Errorf("unsupported export format")
	ErrExportInProgress  = fmt.Errorf("export already in progress")
	ErrBrowserLaunch     = fmt.Errorf("failed to launch browser")

	// Persistence errors
	ErrProgressNotFound = fmt.Errorf("no saved progress")
	ErrSessionNotFound  = fmt.Errorf("session not found")

	// Environment errors
	ErrNotATerminal       = fmt.Errorf("not a terminal")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
