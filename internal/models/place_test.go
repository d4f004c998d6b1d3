package models

import (
	"encoding/json"
	"testing"
)

func TestPlaceResponse_ToPlace(t *testing.T) {
	tests := []struct {
		name     string
		response PlaceResponse
		wantCode string
		wantName string
	}{
		{
			name: "city",
			response: PlaceResponse{
				Code:        "DEL",
				Name:        "Delhi",
				CountryName: "India",
				Type:        "city",
			},
			wantCode: "DEL",
			wantName: "Delhi",
		},
		{
			name: "lowercase code is normalized",
			response: PlaceResponse{
				Code:        " bom ",
				Name:        " Mumbai ",
				CountryName: "India",
			},
			wantCode: "BOM",
			wantName: "Mumbai",
		},
		{
			name: "airport without code falls back to city code",
			response: PlaceResponse{
				Name:        "Indira Gandhi International Airport",
				CountryName: "India",
				CityCode:    "DEL",
				Type:        "airport",
			},
			wantCode: "DEL",
			wantName: "Indira Gandhi International Airport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.response.ToPlace()
			if p.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", p.Code, tt.wantCode)
			}
			if p.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", p.Name, tt.wantName)
			}
		})
	}
}

func TestPlaceResponse_JSON(t *testing.T) {
	raw := `{"code":"DEL","name":"Delhi","country_name":"India","country_code":"IN","type":"city"}`

	var resp PlaceResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p := resp.ToPlace()
	if p.CountryName != "India" {
		t.Errorf("CountryName = %q, want India", p.CountryName)
	}
	if p.CountryCode != "IN" {
		t.Errorf("CountryCode = %q, want IN", p.CountryCode)
	}
}

func TestPlace_Label(t *testing.T) {
	p := Place{Code: "DEL", Name: "Delhi", CountryName: "India"}
	if got := p.Label(); got != "Delhi, India" {
		t.Errorf("Label() = %q", got)
	}
	if got := p.String(); got != "Delhi, India (DEL)" {
		t.Errorf("String() = %q", got)
	}

	noCountry := Place{Code: "XXX", Name: "Nowhere"}
	if got := noCountry.Label(); got != "Nowhere" {
		t.Errorf("Label() without country = %q", got)
	}
}
