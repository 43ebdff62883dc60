// Error codes reference.
//
// Technical errors are mapped to short user messages with a code that users
// can quote to support. Codes are grouped by category:
//
//	FILE001 - File too large          "file too large"
//	FILE002 - Invalid CSV             "invalid csv"
//	FILE003 - Encoding error          "encoding error"
//	FILE004 - No file                 "no file provided"
//	FILE005 - Empty file              "empty file"
//
//	DS001   - Dataset not found       "dataset not found"
//	CHK001  - Unknown check           "unknown check"
//	VAL001  - Invalid request         "invalid request"
//
//	UPL002  - System busy             "too many uploads"
//	UPL004  - Request cancelled       "context canceled"
//	UPL005  - Request timeout         "context deadline exceeded"
//
//	EXP001  - Unknown export format   "unknown export format"
//	PUB001  - Publishing disabled     "publishing disabled"
//
//	DB004   - Connection refused      "connection refused"
//	DB005   - Connection reset        "connection reset"
//	DB006   - Timeout                 "timeout"
//
//	RATE001 - Rate limited            "rate limit"
//
//	ERR000  - Fallback when nothing matches; check the logs for the original error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{"file too large", UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated and no row has more fields than the header",
		Code:    "FILE002",
	}},
	{"encoding error", UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was provided",
		Action:  "Attach a CSV file in the \"file\" form field",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a CSV file with a header row",
		Code:    "FILE005",
	}},

	// Dataset and request errors
	{"dataset not found", UserMessage{
		Message: "Dataset not found",
		Action:  "The dataset may have expired. Upload the file again",
		Code:    "DS001",
	}},
	{"unknown check", UserMessage{
		Message: "Unknown quality check",
		Action:  "Use one of: missing, duplicates, outliers, mixed-types, validation",
		Code:    "CHK001",
	}},
	{"invalid request", UserMessage{
		Message: "The request is not valid",
		Action:  "Check the request body and parameters",
		Code:    "VAL001",
	}},

	// Upload errors
	{"too many uploads", UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},

	// Export errors
	{"unknown export format", UserMessage{
		Message: "Unsupported export format",
		Action:  "Use csv, xlsx or parquet",
		Code:    "EXP001",
	}},
	{"publishing disabled", UserMessage{
		Message: "Publishing to the database is not configured",
		Action:  "Set DATABASE_URL and restart the server",
		Code:    "PUB001",
	}},

	// Database connection errors
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller dataset or try again later",
		Code:    "DB006",
	}},

	// Rate limiting
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load: %w", ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with the message
// shown to users.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
