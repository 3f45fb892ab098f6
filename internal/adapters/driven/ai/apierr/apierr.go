// Package apierr maps AI provider failures onto the domain error taxonomy so
// callers can tell retryable faults from configuration mistakes.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// maxBodyInError bounds how much of a response body is quoted in an error.
const maxBodyInError = 512

// Status converts a non-success HTTP status from provider into an error.
//
//   - 429 wraps domain.ErrRateLimited and domain.ErrTransientIO
//   - 5xx wraps domain.ErrTransientIO
//   - 401 and 403 wrap domain.ErrConfiguration
//   - anything else is a plain error
func Status(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError] + "..."
	}
	msg := fmt.Sprintf("%s error (status %d): %s", provider, status, body)

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s", domain.ErrRateLimited, domain.ErrTransientIO, msg)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", domain.ErrTransientIO, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, msg)
	default:
		return errors.New(msg)
	}
}

// Network wraps a transport failure as domain.ErrTransientIO. Cancellation by
// the caller is returned as is.
func Network(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s request failed: %w", domain.ErrTransientIO, provider, err)
}
