// Package context resolves the cached session context of the tapis CLI.
//
// A context is a small set of string values (tenant id, base URL, username,
// API keys, tokens) keyed by a fixed allow-list. Two optional JSON files in
// the cache directory provide stored values:
//
//	~/.agave/current      last-used context, a single JSON object
//	~/.agave/config.json  sessions file
//
// The sessions file has the following layout:
//
//	{
//	  "current": {
//	    "my-client": {"tenantid": "tacc.prod", "username": "jdoe", ...}
//	  },
//	  "sessions": {
//	    "tacc.prod": {"jdoe": {"my-client": {...}}}
//	  }
//	}
//
// # Resolution
//
// Callers request a set of keys, optionally with explicit values. Resolving
// against a file fills in only the keys the caller left null; an explicit
// caller value always wins over the stored one. An empty string counts as
// null.
//
// # Precedence
//
// Bootstrap resolves against both files independently and then merges:
//  1. sessions precedence (default): sessions-derived values win
//  2. client precedence: client-file-derived values win
//
// A missing file is not an error for Bootstrap; the caller's values stand in
// for whatever that file would have contributed.
//
// # Cache Directory
//
// The cache directory is taken from TAPIS_CACHE_DIR, then AGAVE_CACHE_DIR,
// and defaults to ~/.agave.
package context
