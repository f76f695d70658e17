package clients

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ErrorType categorizes a ClientError.
type ErrorType int

const (
	// ErrorTypeUnknown indicates an unclassified transport error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeHTTP indicates the registry answered with a non-2xx status.
	ErrorTypeHTTP
	// ErrorTypeTLS indicates a TLS/certificate verification error.
	ErrorTypeTLS
	// ErrorTypeNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates a request timeout.
	ErrorTypeTimeout
	// ErrorTypeDNS indicates a DNS resolution failure.
	ErrorTypeDNS
)

// String returns a human-readable name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeHTTP:
		return "HTTP error"
	case ErrorTypeTLS:
		return "TLS certificate error"
	case ErrorTypeNetwork:
		return "Network error"
	case ErrorTypeTimeout:
		return "Request timeout"
	case ErrorTypeDNS:
		return "DNS resolution error"
	default:
		return "Client error"
	}
}

// ClientError is returned for any failed registry request, whether the
// request never got an answer or the answer was an error status.
type ClientError struct {
	// Endpoint is the URL that was requested.
	Endpoint string
	// Type categorizes the failure.
	Type ErrorType
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the registry's error message, if any.
	Message string
	// Reason is the underlying error, if any.
	Reason error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Type.String())
	sb.WriteString(" for ")
	sb.WriteString(e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Reason != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Reason.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ClientError) Is(target error) bool {
	_, ok := target.(*ClientError)
	return ok
}

// IsUnauthorized reports whether the registry rejected the credentials.
func (e *ClientError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ClassifyTransportError wraps an error returned by the HTTP client in a
// ClientError with the appropriate type. If the error is nil, returns nil.
func ClassifyTransportError(err error, endpoint string) *ClientError {
	if err == nil {
		return nil
	}

	clientErr := &ClientError{
		Endpoint: endpoint,
		Type:     ErrorTypeUnknown,
		Reason:   err,
	}

	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		clientErr.Type = ErrorTypeTLS
	case errors.As(err, &dnsErr):
		clientErr.Type = ErrorTypeDNS
	case isTimeoutError(err):
		clientErr.Type = ErrorTypeTimeout
	case isNetworkError(err.Error()):
		clientErr.Type = ErrorTypeNetwork
	}

	return clientErr
}

// isTLSError checks if the error is related to TLS/certificate issues.
func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError

	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &unknownAuthErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isTimeoutError checks if the error is a timeout.
func isTimeoutError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

// isNetworkError checks if the error string indicates a network connectivity issue.
func isNetworkError(errStr string) bool {
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
