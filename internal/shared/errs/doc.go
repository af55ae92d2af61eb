// Package errs defines the classified error taxonomy used across the server.
//
// Every failure that can reach a tool caller is mapped to one of six
// categories:
//   - NETWORK: connection refused, DNS/unreachable, timeout, transport failure
//   - API: upstream responded with an error status or an undecodable body
//   - VALIDATION: tool input rejected before any request was sent
//   - SESSION: upstream rejected the session cookie (HTTP 401/403)
//   - FILE: local read/write failure during download or upload
//   - INTERNAL: anything else
//
// Classification happens once, at the lowest layer that can tell the cases
// apart. Classify is idempotent, so upper layers may call it freely.
//
// Example Usage:
//
//	if err != nil {
//	    ce := errs.Classify(err)
//	    if ce.Retryable() { ... }
//	    return ce.Payload()
//	}
package errs
