// SPDX-License-Identifier: EPL-2.0

package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrBodyTooLarge = errors.New("response body exceeds limit")

// FetchError reports a response with a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string // first bytes of the response body, for diagnostics
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fetch %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}
