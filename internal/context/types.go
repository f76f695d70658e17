package context

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Key names one field of a Context. Only the keys in AllowedKeys are valid.
type Key string

const (
	KeyTenantID     Key = "tenantid"
	KeyBaseURL      Key = "baseurl"
	KeyUsername     Key = "username"
	KeyAPIKey       Key = "apikey"
	KeyAPISecret    Key = "apisecret"
	KeyClientName   Key = "client_name"
	KeyExpiresAt    Key = "expires_at"
	KeyExpiresIn    Key = "expires_in"
	KeyCreatedAt    Key = "created_at"
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyDevURL       Key = "devurl"
)

// AllowedKeys is the allow-list of context keys, in canonical order.
var AllowedKeys = []Key{
	KeyTenantID,
	KeyBaseURL,
	KeyUsername,
	KeyAPIKey,
	KeyAPISecret,
	KeyClientName,
	KeyExpiresAt,
	KeyExpiresIn,
	KeyCreatedAt,
	KeyAccessToken,
	KeyRefreshToken,
	KeyDevURL,
}

// DefaultKeys are requested by Bootstrap when the caller asks for nothing.
var DefaultKeys = []Key{
	KeyTenantID,
	KeyBaseURL,
	KeyUsername,
	KeyAccessToken,
	KeyRefreshToken,
	KeyAPIKey,
	KeyAPISecret,
}

// IsAllowed reports whether k is in the allow-list.
func (k Key) IsAllowed() bool {
	for _, allowed := range AllowedKeys {
		if k == allowed {
			return true
		}
	}
	return false
}

// ParseKey validates name against the allow-list.
func ParseKey(name string) (Key, error) {
	k := Key(name)
	if !k.IsAllowed() {
		return "", &ValidationError{Field: "key", Value: name, Reason: "unknown keyword"}
	}
	return k, nil
}

// Precedence selects which cache file wins when Bootstrap merges.
type Precedence string

const (
	// PrecedenceSessions lets values from the sessions file win.
	PrecedenceSessions Precedence = "sessions"
	// PrecedenceClient lets values from the client file win.
	PrecedenceClient Precedence = "client"
)

// ParsePrecedence validates a precedence name. An empty string selects
// PrecedenceSessions.
func ParsePrecedence(s string) (Precedence, error) {
	switch Precedence(s) {
	case "", PrecedenceSessions:
		return PrecedenceSessions, nil
	case PrecedenceClient:
		return PrecedenceClient, nil
	default:
		return "", &ValidationError{Field: "precedence", Value: s, Reason: "must be one of: sessions, client"}
	}
}

// Context maps keys to values. A nil value is null; a key that is not in
// the map is absent.
type Context map[Key]*string

// NewContext returns a Context with every given key set to null.
func NewContext(keys ...Key) Context {
	c := make(Context, len(keys))
	for _, k := range keys {
		c[k] = nil
	}
	return c
}

// StringPtr returns a pointer to s, for building Context literals.
func StringPtr(s string) *string {
	return &s
}

// Set stores v under k.
func (c Context) Set(k Key, v string) {
	c[k] = &v
}

// Get returns the value for k and whether it is non-null.
func (c Context) Get(k Key) (string, bool) {
	v, ok := c[k]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Value returns the value for k, or "" when k is null or absent.
func (c Context) Value(k Key) string {
	v, _ := c.Get(k)
	return v
}

// Clone returns a copy of c that shares no state with it.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = StringPtr(*v)
	}
	return out
}

// Merge applies every entry of other onto c, nulls included.
func (c Context) Merge(other Context) {
	for k, v := range other {
		if v == nil {
			c[k] = nil
			continue
		}
		c[k] = StringPtr(*v)
	}
}

// Keys returns the keys of c sorted in allow-list order.
func (c Context) Keys() []Key {
	keys := make([]Key, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keyIndex(keys[i]) < keyIndex(keys[j])
	})
	return keys
}

// Validate returns a ValidationError for the first key of c that is not
// allow-listed.
func (c Context) Validate() error {
	for _, k := range c.Keys() {
		if !k.IsAllowed() {
			return &ValidationError{Field: "key", Value: string(k), Reason: "unknown keyword"}
		}
	}
	return nil
}

// ToMap converts c into a map suitable for JSON or YAML encoding, with null
// values as nil.
func (c Context) ToMap() map[string]any {
	out := make(map[string]any, len(c))
	for k, v := range c {
		if v == nil {
			out[string(k)] = nil
			continue
		}
		out[string(k)] = *v
	}
	return out
}

// Token builds an oauth2 token from the cached access token, refresh token
// and expires_at. It returns nil when there is no access token.
func (c Context) Token() *oauth2.Token {
	access, ok := c.Get(KeyAccessToken)
	if !ok {
		return nil
	}
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: c.Value(KeyRefreshToken),
		TokenType:    "Bearer",
	}
	if expiresAt, ok := c.Get(KeyExpiresAt); ok {
		if t, err := ParseExpiry(expiresAt); err == nil {
			tok.Expiry = t
		}
	}
	return tok
}

// expiryLayouts are the timestamp formats found in cached expires_at values.
// Layouts without a zone are read as local time.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.ANSIC,
}

// maxExpirySeconds is the unix time of 9999-12-31T23:59:59Z.
const maxExpirySeconds = 253402300799

// ParseExpiry parses an expires_at value. Unix seconds in [0, year 9999] are
// accepted as well as the layouts in expiryLayouts.
func ParseExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || secs < 0 || secs > maxExpirySeconds {
			return time.Time{}, fmt.Errorf("expiry %q is out of range", s)
		}
		return time.Unix(int64(secs), 0).UTC(), nil
	}
	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func keyIndex(k Key) int {
	for i, allowed := range AllowedKeys {
		if k == allowed {
			return i
		}
	}
	return len(AllowedKeys)
}
