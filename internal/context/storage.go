package context

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tapis/pkg/logging"
)

const (
	// CacheDirEnvVar overrides the cache directory.
	CacheDirEnvVar = "TAPIS_CACHE_DIR"
	// LegacyCacheDirEnvVar is consulted when CacheDirEnvVar is unset.
	LegacyCacheDirEnvVar = "AGAVE_CACHE_DIR"

	// clientFileName is the name of the last-used context file.
	clientFileName = "current"
	// sessionsFileName is the name of the sessions file.
	sessionsFileName = "config.json"
	// defaultCacheDir is the cache subdirectory under home.
	defaultCacheDir = ".agave"
)

// Storage locates the cache files of a single cache directory.
type Storage struct {
	cacheDir string
}

// NewStorage creates a Storage for the default cache directory.
// The directory is taken from TAPIS_CACHE_DIR, then AGAVE_CACHE_DIR, and
// defaults to ~/.agave.
func NewStorage() (*Storage, error) {
	for _, env := range []string{CacheDirEnvVar, LegacyCacheDirEnvVar} {
		if dir := os.Getenv(env); dir != "" {
			return NewStorageWithPath(dir), nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}

	return NewStorageWithPath(filepath.Join(homeDir, defaultCacheDir)), nil
}

// NewStorageWithPath creates a Storage with a custom cache directory.
func NewStorageWithPath(cacheDir string) *Storage {
	return &Storage{
		cacheDir: cacheDir,
	}
}

// CacheDir returns the cache directory.
func (s *Storage) CacheDir() string {
	return s.cacheDir
}

// ClientFilePath returns the full path to the client file.
func (s *Storage) ClientFilePath() string {
	return filepath.Join(s.cacheDir, clientFileName)
}

// SessionsFilePath returns the full path to the sessions file.
func (s *Storage) SessionsFilePath() string {
	return filepath.Join(s.cacheDir, sessionsFileName)
}

// Bootstrap resolves requested against the client file and the sessions file
// and merges the two results.
//
// An empty requested context asks for DefaultKeys. When the client file is
// missing, the requested values stand in for it; when the sessions file is
// missing, the client-derived values stand in for it. With
// PrecedenceSessions the sessions-derived values are applied over the
// client-derived ones; with PrecedenceClient the reverse.
func (s *Storage) Bootstrap(precedence Precedence, requested Context) (Context, error) {
	if len(requested) == 0 {
		requested = NewContext(DefaultKeys...)
	}
	if err := requested.Validate(); err != nil {
		return nil, err
	}

	clientCtx, err := ResolveFromClientFile(s.ClientFilePath(), requested)
	if err != nil {
		if !errors.Is(err, &NotFoundError{}) {
			return nil, err
		}
		clientCtx = resolve(nil, requested)
	}

	sessionsCtx, err := ResolveFromSessionsFile(s.SessionsFilePath(), requested)
	if err != nil {
		if !errors.Is(err, &NotFoundError{}) {
			return nil, err
		}
		sessionsCtx = clientCtx.Clone()
	}

	if precedence == PrecedenceSessions {
		clientCtx.Merge(sessionsCtx)
		logging.Debug(subsystem, "Bootstrapped %d keys with sessions precedence from %s", len(clientCtx), s.cacheDir)
		return clientCtx, nil
	}

	sessionsCtx.Merge(clientCtx)
	logging.Debug(subsystem, "Bootstrapped %d keys with client precedence from %s", len(sessionsCtx), s.cacheDir)
	return sessionsCtx, nil
}

// LookupSession finds a stored session in the sessions file.
// See the package-level LookupSession.
func (s *Storage) LookupSession(tenantID, username, clientName string) (string, Context, error) {
	return LookupSession(s.SessionsFilePath(), tenantID, username, clientName)
}
