// Package cli holds the output and flag plumbing shared by the tapis
// commands.
//
// Commands render results in one of three formats:
//   - table: kubectl-style plain columns (default)
//   - json: indented JSON
//   - yaml: YAML
//
// Tables are built with go-pretty. Plain tables have no borders so they can be
// piped to grep, awk or cut; key/value tables use a rounded box style.
package cli
