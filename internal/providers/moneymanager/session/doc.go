// Package session keeps the upstream session cookie alive across calls and
// process restarts.
//
// The Money Manager web server authenticates by an opaque cookie handed out
// on first contact. Store is installed as the HTTP client's cookie jar; the
// client calls Save after each successful exchange, which rewrites the
// session file in full. There is one session per Store and the last writer
// wins.
package session
