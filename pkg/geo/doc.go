// Package geo holds the small coordinate and side types shared by the order form,
// the location resolver and the map display.
//
// A Side names one half of the location workflow (pickup or destination). Each
// side owns exactly one GeoPoint marker; the two never share state.
package geo
