// Package geocode is a thin client for the Google Geocoding JSON API.
//
// Only the first candidate of a response is used. An empty or missing result
// list is reported as ErrNotFound; every other problem (transport, status code,
// malformed body) is a *Error of KindFailure. The client never retries.
package geocode
