package errors

// Error codes for standardized error responses
const (
	// Session errors
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeInvalidToken        = "invalid_token"
	ErrCodeSessionNotFound     = "session_not_found"
	ErrCodeSessionCreateFailed = "session_create_failed"
	ErrCodeExportFailed        = "export_failed"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"

	// Question bank errors
	ErrCodeBankUnavailable  = "question_bank_unavailable"
	ErrCodeBankReloadFailed = "question_bank_reload_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
	ErrCodeUnknownWindow          = "unknown_leaderboard_window"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
