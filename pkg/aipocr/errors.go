package aipocr

import "fmt"

// AuthError reports a failed credential exchange: the token endpoint answered
// but did not issue an access token.
type AuthError struct {
	Description string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Description)
}

// TransportError reports a network-level failure: connection, timeout, or a
// non-2xx HTTP status. The transport performs no retries; retry policy
// belongs to the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports that the service itself rejected the request with a
// non-zero error code, or returned a payload that could not be parsed.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error [%d]: %s", e.Code, e.Message)
}

// SizeLimitError reports that an image could not be compressed under the
// service's base64 payload ceiling.
type SizeLimitError struct {
	Size  int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("image payload %d exceeds limit %d after compression", e.Size, e.Limit)
}
