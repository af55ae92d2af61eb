// Package client talks to the Money Manager web server exposed by the
// mobile app under /moneyBook.
//
// Every operation goes through resilience.Do: transient failures (network,
// timeouts, 5xx) are retried with exponential backoff, client errors and
// undecodable bodies are not. Cookies live in a session.Store that is
// persisted after each successful exchange.
//
// Operations:
//   - Get, GetXML, Post: request and decode the reply
//   - DownloadFile: stream a response to disk atomically
//   - UploadFile: multipart upload of a local file
//   - ClearSession: drop cookies and the session file
package client
