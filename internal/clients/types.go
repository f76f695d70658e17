package clients

// Credentials are the basic auth credentials for the client registry.
type Credentials struct {
	Username string
	Password string
}

// Client is an OAuth client registered on a tenant.
type Client struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// listResponse is the envelope returned by GET /clients/v2.
type listResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Result  []clientRecord `json:"result"`
}

// clientRecord mirrors one entry of the registry response; description may
// be null.
type clientRecord struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// errorResponse is the body of a failed registry request.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Fault   *struct {
		Message string `json:"message"`
	} `json:"fault"`
}

func (r errorResponse) message() string {
	if r.Message != "" {
		return r.Message
	}
	if r.Fault != nil {
		return r.Fault.Message
	}
	return ""
}
