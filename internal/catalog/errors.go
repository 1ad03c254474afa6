// file: internal/catalog/errors.go
// version: 1.0.0
// guid: b4353ce9-4ebc-47c6-96cf-6b7b09f60a6d

package catalog

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every catalog failure: transport errors, non-2xx
// responses and payloads that do not parse.
var ErrUnavailable = errors.New("catalog unavailable")

// ErrEmptyID is returned by FetchDetails for a blank id.
var ErrEmptyID = errors.New("catalog: empty book id")

// UnavailableError carries the cause of a failed catalog call.
// errors.Is(err, ErrUnavailable) is true for every UnavailableError.
type UnavailableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
