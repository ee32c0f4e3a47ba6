// Package locationsearch provides a small net/http handler that resolves a
// free-text address for one side of a delivery order and returns the result as
// JSON.
//
// The handler accepts GET and POST. The side and query are read from the query
// string or a form body. Resolution goes through a Searcher chosen per request,
// so the same handler can serve many sessions.
package locationsearch
