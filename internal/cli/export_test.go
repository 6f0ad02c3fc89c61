package cli

// Internal helpers exposed for black-box tests.

var (
	NewBackend = newBackend
	NewLogger  = newLogger
)
