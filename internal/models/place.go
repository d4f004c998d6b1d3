package models

import (
	"fmt"
	"strings"
)

// Place represents a city or airport candidate from the autocomplete service
type Place struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode,omitempty"`
	CityName    string `json:"cityName,omitempty"`
	Type        string `json:"type"`
}

// PlaceResponse represents the raw JSON entry returned by the places2 endpoint
type PlaceResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	CityName    string `json:"city_name"`
	CityCode    string `json:"city_code"`
	Type        string `json:"type"`
}

// ToPlace converts the raw response to a Place
func (r *PlaceResponse) ToPlace() *Place {
	code := strings.ToUpper(strings.TrimSpace(r.Code))
	// Some airport entries only carry the city code
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(r.CityCode))
	}

	return &Place{
		Code:        code,
		Name:        strings.TrimSpace(r.Name),
		CountryName: strings.TrimSpace(r.CountryName),
		CountryCode: r.CountryCode,
		CityName:    r.CityName,
		Type:        r.Type,
	}
}

// Label returns the text shown in the input field after the place is picked
func (p Place) Label() string {
	if p.CountryName == "" {
		return p.Name
	}
	return fmt.Sprintf("%s, %s", p.Name, p.CountryName)
}

// String returns the suggestion line, e.g. "Delhi, India (DEL)"
func (p Place) String() string {
	return fmt.Sprintf("%s (%s)", p.Label(), p.Code)
}
