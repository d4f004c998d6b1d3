// Package search validates a completed search form and packages it for the
// results view.
package search

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/skyscout/skyscout-cli/internal/api"
)

// MissingFieldsMessage is shown to the user when the form is incomplete
const MissingFieldsMessage = "Please fill in Origin, Destination, and Departure Date."

// ErrMissingFields matches every ValidationError
var ErrMissingFields = errors.New("missing search fields")

// ValidationError lists the form fields that are still empty
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return MissingFieldsMessage
}

// Is implements errors.Is for ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingFields
}

// Endpoint is one end of the route: the resolved code and the text the user saw
type Endpoint struct {
	Code  string
	Label string
}

// Request is a validated one-way search
type Request struct {
	origin           string
	destination      string
	departDate       string
	originInput      string
	destinationInput string
}

// Build validates the form and returns the request. It fails iff the origin
// code, the destination code or the date is blank.
func Build(origin, destination Endpoint, departDate string) (Request, error) {
	var missing []string
	if strings.TrimSpace(origin.Code) == "" {
		missing = append(missing, "origin")
	}
	if strings.TrimSpace(destination.Code) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(departDate) == "" {
		missing = append(missing, "depart_date")
	}
	if len(missing) > 0 {
		return Request{}, &ValidationError{Missing: missing}
	}

	return Request{
		origin:           origin.Code,
		destination:      destination.Code,
		departDate:       departDate,
		originInput:      origin.Label,
		destinationInput: destination.Label,
	}, nil
}

func (r Request) Origin() string           { return r.origin }
func (r Request) Destination() string      { return r.destination }
func (r Request) DepartDate() string       { return r.departDate }
func (r Request) OneWay() bool             { return true }
func (r Request) OriginInput() string      { return r.originInput }
func (r Request) DestinationInput() string { return r.destinationInput }

// FareRequest converts the search into a fare service query
func (r Request) FareRequest() api.FareRequest {
	return api.FareRequest{
		Origin:      r.origin,
		Destination: r.destination,
		DepartDate:  r.departDate,
		OneWay:      true,
	}
}

type requestJSON struct {
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	DepartDate       string `json:"depart_date"`
	OneWay           bool   `json:"one_way"`
	OriginInput      string `json:"originInput"`
	DestinationInput string `json:"destinationInput"`
}

// MarshalJSON encodes the request in the shape the results view consumes
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{
		Origin:           r.origin,
		Destination:      r.destination,
		DepartDate:       r.departDate,
		OneWay:           true,
		OriginInput:      r.originInput,
		DestinationInput: r.destinationInput,
	})
}
