package bot

// Internal helpers exposed for black-box tests.

var (
	Truncate      = truncate
	RejectionText = rejectionText
	FailureText   = failureText
)
