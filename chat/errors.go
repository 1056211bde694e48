// SPDX-License-Identifier: EPL-2.0

package chat

import (
	"errors"
	"fmt"
)

var ErrEmptyQuestion = errors.New("empty question")

// MalformedResponseError reports a backend reply that does not have the
// expected shape.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s response: %s", e.Endpoint, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
