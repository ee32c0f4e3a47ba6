// Package location resolves free-text addresses for one side of the order and
// keeps the per-side search state.
//
// Each side moves through Idle, Searching and then Resolved or Failed. Sides
// are guarded independently, so pickup and destination searches never block or
// overwrite each other. Searches on the same side are not sequenced: whichever
// response arrives last decides the final state.
package location
