// Package order implements the delivery order form: the draft fields, their
// validation rules, the address write-back contract shared with the location
// resolver, and the assembly of the final submission record.
//
// Validation is driven by go-playground/validator struct tags on Draft. Every
// field is required and both phone numbers need at least nine characters.
// Field errors are keyed by the JSON field names used by the page and the API.
//
// Address fields have two writers: the user (Form.Set) and the resolver
// (Form.SetAddress). The last writer wins. Form tracks whether the user edited an
// address after it was resolved so callers can surface the divergence; the
// submission itself always carries the last-known marker coordinates.
package order
