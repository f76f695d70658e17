package context

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"tapis/pkg/logging"
)

const subsystem = "Context"

// sessionsDocument is the on-disk layout of the sessions file.
type sessionsDocument struct {
	Current  *orderedmap.OrderedMap[string, json.RawMessage]  `json:"current"`
	Sessions map[string]map[string]map[string]json.RawMessage `json:"sessions"`
}

// ResolveFromClientFile resolves requested against the client file at path.
//
// For every requested key an explicit caller value is kept; null (or empty)
// caller values are replaced by the stored value. A missing file yields a
// NotFoundError and a key outside the allow-list a ValidationError. The
// requested context is never modified.
func ResolveFromClientFile(path string, requested Context) (Context, error) {
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	data, err := readCacheFile(path)
	if err != nil {
		return nil, err
	}

	stored, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client file %s: %w", path, err)
	}

	return resolve(stored, requested), nil
}

// ResolveFromSessionsFile resolves requested against the first entry of the
// sessions file's "current" object, using the same rules as
// ResolveFromClientFile. When client_name is still null afterwards it is set
// to the name of that entry.
func ResolveFromSessionsFile(path string, requested Context) (Context, error) {
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	doc, err := loadSessions(path)
	if err != nil {
		return nil, err
	}

	first := doc.Current.Oldest()
	if first == nil {
		return nil, &NotFoundError{Path: path, What: "current session"}
	}

	stored, err := decodeObject(first.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current session %q in %s: %w", first.Key, path, err)
	}

	resolved := resolve(stored, requested)
	if _, ok := resolved.Get(KeyClientName); !ok {
		resolved.Set(KeyClientName, first.Key)
	}
	return resolved, nil
}

// Bootstrap resolves requested against both cache files in dir and merges
// the results according to precedence. See Storage.Bootstrap.
func Bootstrap(dir string, precedence Precedence, requested Context) (Context, error) {
	return NewStorageWithPath(dir).Bootstrap(precedence, requested)
}

// LookupSession finds a stored session in the sessions file at path.
//
// When clientName names a current session whose tenant id and username
// match, that session is returned. Otherwise, if any of the three arguments
// is empty, the first current session is returned. Otherwise the session is
// looked up under sessions/<tenantID>/<username>/<clientName>.
//
// A current session named clientName whose tenant id or username differ is
// not returned; the lookup continues with the stored sessions instead of
// reporting nothing, so a stored session of the same client name is still
// found.
func LookupSession(path, tenantID, username, clientName string) (string, Context, error) {
	doc, err := loadSessions(path)
	if err != nil {
		return "", nil, err
	}

	if raw, ok := doc.Current.Get(clientName); ok {
		session, err := decodeSession(path, clientName, raw)
		if err != nil {
			return "", nil, err
		}
		if session.Value(KeyTenantID) == tenantID && session.Value(KeyUsername) == username {
			return clientName, session, nil
		}
	}

	if tenantID == "" || username == "" || clientName == "" {
		first := doc.Current.Oldest()
		if first == nil {
			return "", nil, &NotFoundError{Path: path, What: "current session"}
		}
		session, err := decodeSession(path, first.Key, first.Value)
		if err != nil {
			return "", nil, err
		}
		return first.Key, session, nil
	}

	raw, ok := doc.Sessions[tenantID][username][clientName]
	if !ok {
		return "", nil, &NotFoundError{
			Path: path,
			What: fmt.Sprintf("session %s/%s/%s", tenantID, username, clientName),
		}
	}
	session, err := decodeSession(path, clientName, raw)
	if err != nil {
		return "", nil, err
	}
	return clientName, session, nil
}

// resolve applies the no-overwrite rule: a stored value is only taken for
// keys whose requested value is null or empty.
func resolve(stored map[string]any, requested Context) Context {
	out := make(Context, len(requested))
	for k, v := range requested {
		if v != nil && *v != "" {
			out[k] = StringPtr(*v)
			continue
		}
		out[k] = stringify(stored[string(k)])
	}
	return out
}

func readCacheFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug(subsystem, "Cache file %s does not exist", path)
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}
	logging.Debug(subsystem, "Loaded cache file %s", path)
	return data, nil
}

func loadSessions(path string) (*sessionsDocument, error) {
	data, err := readCacheFile(path)
	if err != nil {
		return nil, err
	}

	doc := sessionsDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sessions file %s: %w", path, err)
	}
	if doc.Current == nil {
		doc.Current = orderedmap.New[string, json.RawMessage]()
	}
	return &doc, nil
}

// decodeSession converts a stored session object into a Context holding
// every allow-listed key it contains.
func decodeSession(path, name string, raw json.RawMessage) (Context, error) {
	stored, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session %q in %s: %w", name, path, err)
	}
	session := make(Context)
	for _, k := range AllowedKeys {
		if v, ok := stored[string(k)]; ok {
			session[k] = stringify(v)
		}
	}
	return session, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

// stringify renders a decoded JSON value as a context value. JSON null and
// the empty string are both null.
func stringify(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return StringPtr(val)
	case json.Number:
		return StringPtr(val.String())
	case bool:
		return StringPtr(strconv.FormatBool(val))
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return StringPtr(fmt.Sprintf("%v", val))
		}
		return StringPtr(string(data))
	}
}
