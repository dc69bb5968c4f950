// Package sentinel holds infrastructure errors that cross package
// boundaries. Backends return them, optionally wrapped, and the HTTP layer
// maps them to status codes with errors.Is.
package sentinel

import "errors"

// ErrNotFound means no record exists under the requested id.
var ErrNotFound = errors.New("not found")
