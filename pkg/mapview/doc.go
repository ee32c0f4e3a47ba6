// Package mapview derives what the map widget shows from the two marker
// positions and the current center, and streams those views to browsers.
package mapview
