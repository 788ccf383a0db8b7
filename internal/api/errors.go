package api

import (
	"fmt"
	"strings"

	"github.com/debemdeboas/notedesk/internal/config"
)

// StatusError is returned for any non-2xx response that is not a validation failure.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(config.ErrHTTPStatusFmt, e.StatusCode)
}

// ValidationError carries the messages of a 422 response.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, config.ValidationSeparator)
}
