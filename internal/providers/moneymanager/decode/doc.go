// Package decode turns Money Manager response bodies into plain Go values.
//
// The upstream speaks three dialects:
//   - quasi-JSON: JavaScript object literals (bare keys, single quotes)
//   - XML: the transaction listing endpoint only
//   - binary: exports and backups, streamed to disk by the client untouched
//
// Decoded values use the encoding/json shapes (map[string]any, []any,
// string, float64, bool, nil) so handlers can reshape them uniformly.
// Failures are classified as API_INVALID_RESPONSE and carry at most
// PrefixLimit bytes of the offending body.
//
// Example Usage:
//
//	v, err := decode.QuasiJSON(body)
//	rows := decode.Records(decode.Lookup(xmlValue, "data", "row"))
package decode
