package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeTimeout       = "FETCH_TIMEOUT"
	ErrCodeNavigation    = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash  = "BROWSER_CRASH"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeWatchNotFound = "WATCH_NOT_FOUND"
	ErrCodeWatchLimit    = "WATCH_LIMIT_REACHED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WatchError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
//
// Note that the classification/extraction pipeline itself never produces
// these: selector and extraction failures degrade to empty results. Typed
// errors only arise from the surrounding machinery (fetching, the browser,
// the API surface).
type WatchError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *WatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}

// NewWatchError creates a new WatchError.
func NewWatchError(code, message string, err error) *WatchError {
	return &WatchError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *WatchError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
