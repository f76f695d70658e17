package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"tapis/pkg/logging"
)

const (
	// DefaultHTTPTimeout is the default timeout for registry requests.
	DefaultHTTPTimeout = 30 * time.Second

	// listPath is appended to the tenant URL to reach the client registry.
	listPath = "/clients/v2"

	// maxErrorBodySize caps how much of an error response is read.
	maxErrorBodySize = 64 * 1024

	subsystem = "Clients"
)

// Lister lists the OAuth clients registered to a user.
type Lister struct {
	httpClient *http.Client
	userAgent  string
}

// ListerOption configures a Lister.
type ListerOption func(*Lister)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ListerOption {
	return func(l *Lister) {
		l.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) ListerOption {
	return func(l *Lister) {
		l.userAgent = userAgent
	}
}

// NewLister creates a Lister. Without options it uses a non-shared
// go-cleanhttp client with DefaultHTTPTimeout.
func NewLister(opts ...ListerOption) *Lister {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Timeout = DefaultHTTPTimeout

	l := &Lister{
		httpClient: httpClient,
		userAgent:  "tapis-cli",
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Endpoint returns the registry URL for tenantURL.
func Endpoint(tenantURL string) string {
	return strings.TrimRight(tenantURL, "/") + listPath
}

// List returns all OAuth clients registered to creds.Username on the tenant
// at tenantURL.
func (l *Lister) List(ctx context.Context, tenantURL string, creds Credentials) ([]Client, error) {
	if strings.TrimSpace(tenantURL) == "" {
		return nil, fmt.Errorf("tenant URL cannot be empty")
	}

	endpoint := Endpoint(tenantURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Accept", "application/json")
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	logging.Debug(subsystem, "GET %s as %s", endpoint, creds.Username)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(endpoint, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Reason: err}
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ClientError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "invalid response body",
			Reason:     err,
		}
	}

	list := make([]Client, 0, len(parsed.Result))
	for _, rec := range parsed.Result {
		c := Client{Name: rec.Name}
		if rec.Description != nil {
			c.Description = *rec.Description
		}
		list = append(list, c)
	}

	logging.Debug(subsystem, "Received %d clients from %s", len(list), endpoint)
	return list, nil
}

// newStatusError builds a ClientError from a non-2xx response, using the
// registry's message when the body carries one.
func newStatusError(endpoint string, resp *http.Response) *ClientError {
	clientErr := &ClientError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Type:       ErrorTypeHTTP,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return clientErr
	}

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.message() != "" {
		clientErr.Message = parsed.message()
		return clientErr
	}

	clientErr.Message = strings.TrimSpace(string(body))
	return clientErr
}
