package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed narrative request.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindRateLimited ErrorKind = "rate_limited"
	KindBadResponse ErrorKind = "bad_response"
	KindBlocked     ErrorKind = "blocked"
)

// ExternalServiceError reports a narrative provider failure.
type ExternalServiceError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an ExternalServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ese *ExternalServiceError
	return errors.As(err, &ese) && ese.Kind == kind
}

// statusError classifies a non-200 HTTP response.
func statusError(provider string, status int, body []byte) *ExternalServiceError {
	kind := KindBadResponse
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 500:
		kind = KindUnavailable
	}
	return &ExternalServiceError{
		Provider:   provider,
		Kind:       kind,
		StatusCode: status,
		Err:        fmt.Errorf("API request failed: %s", truncate(string(body), 200)),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
