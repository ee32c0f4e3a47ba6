package order

import (
	"fmt"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

// Field names as they appear in JSON payloads and form posts.
const (
	FieldSenderName    = "senderName"
	FieldSenderPhone   = "senderNumber"
	FieldPickup        = "pickup"
	FieldReceiverName  = "receiverName"
	FieldReceiverPhone = "receiverNumber"
	FieldDestination   = "destination"
	FieldPackage       = "package"
)

// Fields lists every draft field in form order.
var Fields = []string{
	FieldSenderName,
	FieldSenderPhone,
	FieldPickup,
	FieldReceiverName,
	FieldReceiverPhone,
	FieldDestination,
	FieldPackage,
}

// Draft is the user-editable part of an order.
type Draft struct {
	SenderName    string `json:"senderName" validate:"required"`
	SenderPhone   string `json:"senderNumber" validate:"min=9"`
	Pickup        string `json:"pickup" validate:"required"`
	ReceiverName  string `json:"receiverName" validate:"required"`
	ReceiverPhone string `json:"receiverNumber" validate:"min=9"`
	Destination   string `json:"destination" validate:"required"`
	Package       string `json:"package" validate:"required"`
}

// Get returns the value of the named field.
func (d Draft) Get(field string) (string, error) {
	ptr, err := d.fieldPtr(field)
	if err != nil {
		return "", err
	}
	return *ptr, nil
}

// With returns a copy of d with the named field replaced.
func (d Draft) With(field, value string) (Draft, error) {
	ptr, err := d.fieldPtr(field)
	if err != nil {
		return d, err
	}
	*ptr = value
	return d, nil
}

// Values returns the draft as a field name to value map.
func (d Draft) Values() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, name := range Fields {
		value, _ := d.Get(name)
		out[name] = value
	}
	return out
}

// Address returns the address text for a side.
func (d Draft) Address(side geo.Side) string {
	if side == geo.Destination {
		return d.Destination
	}
	return d.Pickup
}

// fieldPtr operates on the receiver copy; callers only use it on values they own.
func (d *Draft) fieldPtr(field string) (*string, error) {
	switch field {
	case FieldSenderName:
		return &d.SenderName, nil
	case FieldSenderPhone:
		return &d.SenderPhone, nil
	case FieldPickup:
		return &d.Pickup, nil
	case FieldReceiverName:
		return &d.ReceiverName, nil
	case FieldReceiverPhone:
		return &d.ReceiverPhone, nil
	case FieldDestination:
		return &d.Destination, nil
	case FieldPackage:
		return &d.Package, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Submission is the record produced once per successful order submit.
type Submission struct {
	SenderName           string  `json:"senderName"`
	SenderPhone          string  `json:"senderNumber"`
	Pickup               string  `json:"pickup"`
	ReceiverName         string  `json:"receiverName"`
	ReceiverPhone        string  `json:"receiverNumber"`
	Destination          string  `json:"destination"`
	Package              string  `json:"package"`
	PickupLatitude       float64 `json:"pickupLat"`
	PickupLongitude      float64 `json:"pickupLng"`
	DestinationLatitude  float64 `json:"destinationLat"`
	DestinationLongitude float64 `json:"destinationLng"`
}

// Assemble merges validated fields with the two marker positions. The
// coordinates are taken as given, even if the address text no longer matches.
func Assemble(d Draft, pickup, destination geo.GeoPoint) Submission {
	return Submission{
		SenderName:           d.SenderName,
		SenderPhone:          d.SenderPhone,
		Pickup:               d.Pickup,
		ReceiverName:         d.ReceiverName,
		ReceiverPhone:        d.ReceiverPhone,
		Destination:          d.Destination,
		Package:              d.Package,
		PickupLatitude:       pickup.Latitude,
		PickupLongitude:      pickup.Longitude,
		DestinationLatitude:  destination.Latitude,
		DestinationLongitude: destination.Longitude,
	}
}

// PickupPoint returns the pickup marker carried by the submission.
func (s Submission) PickupPoint() geo.GeoPoint {
	return geo.GeoPoint{Latitude: s.PickupLatitude, Longitude: s.PickupLongitude}
}

// DestinationPoint returns the destination marker carried by the submission.
func (s Submission) DestinationPoint() geo.GeoPoint {
	return geo.GeoPoint{Latitude: s.DestinationLatitude, Longitude: s.DestinationLongitude}
}
