// Package logging provides structured logging for the tapis CLI.
//
// It is a thin layer over Go's slog package. Every record carries a
// subsystem attribute so that output can be filtered by component:
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr)
//	logging.Debug("Context", "Loaded cache file %s", path)
//	logging.Error("Clients", err, "Request to %s failed", endpoint)
//
// Messages logged before InitForCLI is called are dropped.
package logging
