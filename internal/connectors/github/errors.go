package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// wrapError converts go-github errors into the domain error taxonomy.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w: github: %s: %w", domain.ErrRateLimited, domain.ErrTransientIO, operation, err)
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		switch {
		case status == http.StatusNotFound:
			return fmt.Errorf("%w: github: %s: %s", domain.ErrNotFound, operation, respErr.Message)
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return fmt.Errorf("%w: github: %s: %s", domain.ErrConfiguration, operation, respErr.Message)
		case status >= http.StatusInternalServerError:
			return fmt.Errorf("%w: github: %s: %s", domain.ErrTransientIO, operation, respErr.Message)
		default:
			return fmt.Errorf("github: %s: %w", operation, err)
		}
	}

	return fmt.Errorf("%w: github: %s: %w", domain.ErrTransientIO, operation, err)
}
