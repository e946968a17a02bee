package notifier

import (
	"errors"
	"net/url"
)

// sanitizeURLError strips the request URL from a *url.Error so tokens
// embedded in webhook URLs never reach logs.
func sanitizeURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.New(urlErr.Op + " request failed: " + unwrapMessage(urlErr.Err))
	}
	return err
}

func unwrapMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// truncate shortens s to at most limit bytes, appending an ellipsis when
// anything was cut.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	const suffix = "..."
	if limit <= len(suffix) {
		return s[:limit]
	}
	return s[:limit-len(suffix)] + suffix
}
