package context

import "fmt"

// NotFoundError indicates that a cache file, or an entry inside it, does not
// exist.
type NotFoundError struct {
	// Path is the cache file that was consulted.
	Path string
	// What describes the missing entry; empty when the file itself is missing.
	What string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.What == "" {
		return fmt.Sprintf("cache file %s not found", e.Path)
	}
	return fmt.Sprintf("%s not found in %s", e.What, e.Path)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ValidationError indicates a caller-supplied value that is not accepted,
// such as a key outside the allow-list.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}
