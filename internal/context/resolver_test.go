package context

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientFixture = `{
  "tenantid": "tacc.prod",
  "baseurl": "https://api.tacc.utexas.edu",
  "username": "jdoe",
  "apikey": "client-key",
  "apisecret": "client-secret",
  "access_token": "client-access",
  "refresh_token": null,
  "expires_in": 14400,
  "devurl": ""
}`

const sessionsFixture = `{
  "current": {
    "sd2e-client": {
      "tenantid": "sd2e",
      "baseurl": "https://api.sd2e.org",
      "username": "jdoe",
      "access_token": "session-access",
      "refresh_token": "session-refresh"
    },
    "other-client": {
      "tenantid": "other",
      "username": "someone"
    }
  },
  "sessions": {
    "tacc.prod": {
      "jdoe": {
        "legacy-client": {
          "tenantid": "tacc.prod",
          "username": "jdoe",
          "apikey": "legacy-key",
          "expires_at": "2001-02-03T04:05:06Z"
        }
      }
    }
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveFromClientFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "current", clientFixture)

	t.Run("stored value fills null request", func(t *testing.T) {
		got, err := ResolveFromClientFile(path, NewContext(KeyTenantID, KeyUsername))
		require.NoError(t, err)

		assert.Equal(t, "tacc.prod", got.Value(KeyTenantID))
		assert.Equal(t, "jdoe", got.Value(KeyUsername))
		assert.Len(t, got, 2)
	})

	t.Run("explicit value is not overwritten", func(t *testing.T) {
		requested := Context{KeyUsername: StringPtr("override")}
		got, err := ResolveFromClientFile(path, requested)
		require.NoError(t, err)

		assert.Equal(t, "override", got.Value(KeyUsername))
	})

	t.Run("empty string counts as null", func(t *testing.T) {
		requested := Context{KeyBaseURL: StringPtr("")}
		got, err := ResolveFromClientFile(path, requested)
		require.NoError(t, err)

		assert.Equal(t, "https://api.tacc.utexas.edu", got.Value(KeyBaseURL))
	})

	t.Run("null and empty stored values resolve to null", func(t *testing.T) {
		got, err := ResolveFromClientFile(path, NewContext(KeyRefreshToken, KeyDevURL, KeyClientName))
		require.NoError(t, err)

		for _, k := range []Key{KeyRefreshToken, KeyDevURL, KeyClientName} {
			v, present := got[k]
			assert.True(t, present, "key %s should be present", k)
			assert.Nil(t, v, "key %s should be null", k)
		}
	})

	t.Run("numbers are rendered as text", func(t *testing.T) {
		got, err := ResolveFromClientFile(path, NewContext(KeyExpiresIn))
		require.NoError(t, err)

		assert.Equal(t, "14400", got.Value(KeyExpiresIn))
	})

	t.Run("requested context is not modified", func(t *testing.T) {
		requested := NewContext(KeyTenantID)
		_, err := ResolveFromClientFile(path, requested)
		require.NoError(t, err)

		assert.Nil(t, requested[KeyTenantID])
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ResolveFromClientFile(path, Context{Key("password"): nil})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "password", validationErr.Value)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ResolveFromClientFile(filepath.Join(dir, "missing"), NewContext(KeyTenantID))

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, filepath.Join(dir, "missing"), notFound.Path)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := writeFile(t, dir, "bad", "{not json")
		_, err := ResolveFromClientFile(bad, NewContext(KeyTenantID))

		require.Error(t, err)
		assert.False(t, errors.Is(err, &NotFoundError{}))
	})
}

func TestResolveFromSessionsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", sessionsFixture)

	t.Run("first current entry is used", func(t *testing.T) {
		got, err := ResolveFromSessionsFile(path, NewContext(KeyTenantID, KeyAccessToken))
		require.NoError(t, err)

		assert.Equal(t, "sd2e", got.Value(KeyTenantID))
		assert.Equal(t, "session-access", got.Value(KeyAccessToken))
	})

	t.Run("client name is filled from the entry name", func(t *testing.T) {
		got, err := ResolveFromSessionsFile(path, NewContext(KeyTenantID))
		require.NoError(t, err)

		assert.Equal(t, "sd2e-client", got.Value(KeyClientName))
	})

	t.Run("explicit client name is kept", func(t *testing.T) {
		got, err := ResolveFromSessionsFile(path, Context{KeyClientName: StringPtr("mine")})
		require.NoError(t, err)

		assert.Equal(t, "mine", got.Value(KeyClientName))
	})

	t.Run("empty current", func(t *testing.T) {
		empty := writeFile(t, dir, "empty.json", `{"current": {}}`)
		_, err := ResolveFromSessionsFile(empty, NewContext(KeyTenantID))

		assert.ErrorIs(t, err, &NotFoundError{})
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ResolveFromSessionsFile(filepath.Join(dir, "missing.json"), NewContext(KeyTenantID))

		assert.ErrorIs(t, err, &NotFoundError{})
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ResolveFromSessionsFile(path, Context{Key("secret"): nil})

		assert.ErrorIs(t, err, &ValidationError{})
	})
}

func TestLookupSession(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", sessionsFixture)

	t.Run("matching current session", func(t *testing.T) {
		name, session, err := LookupSession(path, "other", "someone", "other-client")
		require.NoError(t, err)

		assert.Equal(t, "other-client", name)
		assert.Equal(t, "other", session.Value(KeyTenantID))
	})

	t.Run("missing arguments return first current session", func(t *testing.T) {
		name, session, err := LookupSession(path, "", "", "")
		require.NoError(t, err)

		assert.Equal(t, "sd2e-client", name)
		assert.Equal(t, "session-refresh", session.Value(KeyRefreshToken))
	})

	t.Run("stored session by tenant, user and client", func(t *testing.T) {
		name, session, err := LookupSession(path, "tacc.prod", "jdoe", "legacy-client")
		require.NoError(t, err)

		assert.Equal(t, "legacy-client", name)
		assert.Equal(t, "legacy-key", session.Value(KeyAPIKey))
		assert.Nil(t, session.Token())
	})

	t.Run("current session with mismatched tenant falls through", func(t *testing.T) {
		_, _, err := LookupSession(path, "tacc.prod", "jdoe", "sd2e-client")

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Contains(t, notFound.Error(), "tacc.prod/jdoe/sd2e-client")
	})

	t.Run("current session with mismatched user finds stored session", func(t *testing.T) {
		shadowed := writeFile(t, dir, "shadowed.json", `{
  "current": {"legacy-client": {"tenantid": "tacc.prod", "username": "someone"}},
  "sessions": {"tacc.prod": {"jdoe": {"legacy-client": {"tenantid": "tacc.prod", "username": "jdoe", "apikey": "stored-key"}}}}
}`)
		name, session, err := LookupSession(shadowed, "tacc.prod", "jdoe", "legacy-client")
		require.NoError(t, err)

		assert.Equal(t, "legacy-client", name)
		assert.Equal(t, "jdoe", session.Value(KeyUsername))
		assert.Equal(t, "stored-key", session.Value(KeyAPIKey))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LookupSession(filepath.Join(dir, "missing.json"), "", "", "")

		assert.ErrorIs(t, err, &NotFoundError{})
	})
}
