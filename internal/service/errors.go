package service

import (
	"fmt"
	"net/http"
)

// AuthError is a caller-facing failure with a stable code and message. Codes
// cover the full taxonomy: missing_field, email_taken, invalid_credentials,
// invalid_token, not_found, internal_error. Storage and other unexpected
// failures are logged server-side and surfaced only as internal_error.
type AuthError struct {
	Code   string
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newAuthError(code string, status int, msg string) *AuthError {
	return &AuthError{Code: code, Status: status, Msg: msg}
}

var (
	errMissingField = newAuthError("missing_field", http.StatusBadRequest, "Email and password required")
	// Unknown email and wrong password share one error so callers cannot
	// enumerate registered accounts.
	errInvalidCredentials = newAuthError("invalid_credentials", http.StatusUnauthorized, "Invalid credentials")
	errEmailTaken         = newAuthError("email_taken", http.StatusConflict, "Email already exists")
	errUserMissing        = newAuthError("not_found", http.StatusNotFound, "User not found")
)

func internalError(msg string) *AuthError {
	return newAuthError("internal_error", http.StatusInternalServerError, msg)
}
