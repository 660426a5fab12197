package auth

import (
	"encoding/xml"
)

// Error represents an S3 error response
type Error struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	RequestID string   `xml:"RequestId,omitempty"`
}

// AuthError represents an authentication error with specific error code
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates a new authentication error with AWS S3 error code.
// Error codes used by the authenticator:
//   - AccessDenied: no authentication information
//   - InvalidArgument: unsupported authentication scheme
//   - AuthorizationHeaderMalformed: the Authorization header cannot be parsed
//   - InvalidAccessKeyId: The AWS access key ID does not exist
//   - RequestTimeTooSkewed: the request time is outside the accepted window
//   - SignatureDoesNotMatch: The request signature does not match
func NewAuthError(code, message string) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
	}
}
