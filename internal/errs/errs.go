// Package errs defines custom error types and utilities.
//
// Its purpose is to give API clients meaningful, actionable, and consistent
// error payloads: field-level validation errors for request bodies, stable
// machine-readable codes, and a single JSON shape for every failure mode
// (validation, token, transport, internal).
package errs
