package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tapis/internal/cli"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommandState()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

// resetCommandState clears flag values left behind by a previous run.
func resetCommandState() {
	cacheDir = ""
	debug = false
	logLevel = "warn"
	clientsListOpts = clientsListOptions{Output: defaultOutputFlags()}
	contextShowOpts = contextShowOptions{Precedence: "sessions", Output: defaultOutputFlags()}
	sessionShowOpts = sessionShowOptions{Output: defaultOutputFlags()}
}

func defaultOutputFlags() cli.CommandFlags {
	return cli.CommandFlags{OutputFormat: string(cli.OutputFormatTable)}
}

func writeCacheFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

const testClientFile = `{
  "tenantid": "tacc.prod",
  "baseurl": "https://api.tacc.utexas.edu",
  "username": "jdoe",
  "apikey": "client-key",
  "access_token": "client-access"
}`

const testSessionsFile = `{
  "current": {
    "sd2e-client": {
      "tenantid": "sd2e",
      "baseurl": "%s",
      "username": "sessuser",
      "access_token": "session-access",
      "expires_at": "2001-02-03T04:05:06Z"
    }
  },
  "sessions": {
    "tacc.prod": {
      "jdoe": {
        "legacy-client": {
          "tenantid": "tacc.prod",
          "username": "jdoe",
          "apikey": "legacy-key"
        }
      }
    }
  }
}`
