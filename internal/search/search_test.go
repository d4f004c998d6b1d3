package search

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/skyscout/skyscout-cli/internal/testutil"
)

func TestBuild_Valid(t *testing.T) {
	req, err := Build(
		Endpoint{Code: "DEL", Label: "Delhi, India"},
		Endpoint{Code: "BOM", Label: "Mumbai, India"},
		"2026-10-18",
	)
	testutil.AssertNil(t, err)

	testutil.AssertEqual(t, req.Origin(), "DEL")
	testutil.AssertEqual(t, req.Destination(), "BOM")
	testutil.AssertEqual(t, req.DepartDate(), "2026-10-18")
	testutil.AssertTrue(t, req.OneWay())
	testutil.AssertEqual(t, req.OriginInput(), "Delhi, India")
	testutil.AssertEqual(t, req.DestinationInput(), "Mumbai, India")

	fr := req.FareRequest()
	testutil.AssertEqual(t, fr.Origin, "DEL")
	testutil.AssertEqual(t, fr.Destination, "BOM")
	testutil.AssertEqual(t, fr.DepartDate, "2026-10-18")
	testutil.AssertTrue(t, fr.OneWay)
}

func TestBuild_EchoesInputsExactly(t *testing.T) {
	req, err := Build(
		Endpoint{Code: "del", Label: "  typed by hand "},
		Endpoint{Code: "BOM"},
		"2026-10-18",
	)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, req.Origin(), "del")
	testutil.AssertEqual(t, req.OriginInput(), "  typed by hand ")
	testutil.AssertEqual(t, req.DestinationInput(), "")
}

func TestBuild_MissingFields(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		destination string
		date        string
		missing     []string
	}{
		{"no origin", "", "BOM", "2026-10-18", []string{"origin"}},
		{"no destination", "DEL", "", "2026-10-18", []string{"destination"}},
		{"no date", "DEL", "BOM", "", []string{"depart_date"}},
		{"blank date", "DEL", "BOM", "   ", []string{"depart_date"}},
		{"whitespace code", " ", "BOM", "2026-10-18", []string{"origin"}},
		{"nothing", "", "", "", []string{"origin", "destination", "depart_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Endpoint{Code: tt.origin, Label: "x"}, Endpoint{Code: tt.destination, Label: "y"}, tt.date)
			testutil.AssertErrorIs(t, err, ErrMissingFields)
			testutil.AssertEqual(t, err.Error(), MissingFieldsMessage)

			var verr *ValidationError
			testutil.AssertTrue(t, errors.As(err, &verr))
			testutil.AssertLen(t, verr.Missing, len(tt.missing))
			for i, field := range tt.missing {
				testutil.AssertEqual(t, verr.Missing[i], field)
			}
		})
	}
}

func TestRequest_MarshalJSON(t *testing.T) {
	req, err := Build(
		Endpoint{Code: "DEL", Label: "Delhi, India"},
		Endpoint{Code: "TRV", Label: "Thiruvananthapuram, India"},
		"2026-10-18",
	)
	testutil.AssertNil(t, err)

	data, err := json.Marshal(req)
	testutil.AssertNil(t, err)

	var got map[string]any
	testutil.AssertNil(t, json.Unmarshal(data, &got))
	testutil.AssertEqual(t, got["origin"], any("DEL"))
	testutil.AssertEqual(t, got["destination"], any("TRV"))
	testutil.AssertEqual(t, got["depart_date"], any("2026-10-18"))
	testutil.AssertEqual(t, got["one_way"], any(true))
	testutil.AssertEqual(t, got["originInput"], any("Delhi, India"))
	testutil.AssertEqual(t, got["destinationInput"], any("Thiruvananthapuram, India"))
}
