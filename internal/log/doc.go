// Package log builds the slog loggers of a11yscan.
//
// Every logger returned by New wraps its text or JSON handler in a
// RedactingHandler. Scanning sends cookies and custom headers configured per
// site, and targets are URLs that may carry access tokens in their query
// string, so verbose output is masked before it reaches the terminal:
//   - attributes named like credentials (cookie, authorization, token...)
//   - values that look like credentials (bearer tokens, JWTs, basic auth)
//   - query parameters with a credential-like name inside URL values
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("fetching", "url", "https://example.com/?token=abc")
//	// url=https://example.com/?token=***REDACTED***
package log
