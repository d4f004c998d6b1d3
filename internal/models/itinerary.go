package models

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FareKeys lists the itinerary fields that may carry the fare, in priority order.
// The fare service has been seen answering with both names.
var FareKeys = []string{"price", "value"}

// ErrNoFares indicates a lookup succeeded but no itinerary carried a usable fare
var ErrNoFares = errors.New("no finite fare found")

// Itinerary is a single priced itinerary as returned by the fare service.
// Fields are kept raw because the fare key is not stable upstream.
type Itinerary map[string]json.RawMessage

// Fare extracts the numeric fare, trying FareKeys in order.
// Numbers and numeric strings are accepted; NaN and infinities are not.
func (it Itinerary) Fare() (float64, bool) {
	for _, key := range FareKeys {
		raw, ok := it[key]
		if !ok {
			continue
		}
		if v, ok := parseFare(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// String returns a string field of the itinerary, or "" when absent
func (it Itinerary) String(key string) string {
	raw, ok := it[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Int returns an integer field of the itinerary, or 0 when absent
func (it Itinerary) Int(key string) int {
	raw, ok := it[key]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return int(n)
}

func parseFare(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// MinFare reduces itineraries to the lowest finite fare.
// It reports false when no itinerary yields one.
func MinFare(itineraries []Itinerary) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, it := range itineraries {
		v, ok := it.Fare()
		if !ok {
			continue
		}
		if v < best {
			best = v
		}
		found = true
	}
	if !found {
		return 0, false
	}
	return best, true
}

// SortByFare orders itineraries by ascending fare; those without a fare go last
func SortByFare(itineraries []Itinerary) {
	sort.SliceStable(itineraries, func(i, j int) bool {
		a, okA := itineraries[i].Fare()
		b, okB := itineraries[j].Fare()
		if okA != okB {
			return okA
		}
		return a < b
	})
}

// FaresResponse is the envelope returned by the fare service
type FaresResponse struct {
	Success *bool       `json:"success"`
	Data    []Itinerary `json:"data"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
}

// OK reports whether the envelope signals success. A missing flag counts as success.
func (r *FaresResponse) OK() bool {
	return r.Success == nil || *r.Success
}

// Reason returns the failure reason carried by the envelope
func (r *FaresResponse) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Message != "" {
		return r.Message
	}
	return "fare service reported failure"
}
