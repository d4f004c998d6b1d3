package testutil

// Sample JSON responses for API testing

// SamplePlacesResponse is a minimal valid places2 response for "Del"
const SamplePlacesResponse = `[
	{
		"id": "DEL",
		"type": "city",
		"code": "DEL",
		"name": "Delhi",
		"country_code": "IN",
		"country_name": "India",
		"state_code": null,
		"coordinates": {"lon": 77.1, "lat": 28.566667},
		"index_strings": [],
		"weight": 1098834,
		"cases": null,
		"country_cases": null,
		"main_airport_name": "Indira Gandhi International Airport"
	},
	{
		"id": "DLM",
		"type": "airport",
		"code": "DLM",
		"name": "Dalaman",
		"country_code": "TR",
		"country_name": "Turkey",
		"city_code": "DLM",
		"city_name": "Dalaman"
	}
]`

// SampleEmptyPlacesResponse is returned for terms without matches
const SampleEmptyPlacesResponse = `[]`

// SampleFaresResponse is a successful fare envelope with mixed fare keys
const SampleFaresResponse = `{
	"success": true,
	"currency": "inr",
	"data": [
		{
			"origin": "DEL",
			"destination": "TRV",
			"airline": "AI",
			"flight_number": "AI 829",
			"departure_at": "2026-10-18T06:10:00+05:30",
			"transfers": 0,
			"duration": 215,
			"price": 5000
		},
		{
			"origin": "DEL",
			"destination": "TRV",
			"airline": "6E",
			"flight_number": "6E 2175",
			"departure_at": "2026-10-18T09:45:00+05:30",
			"transfers": 1,
			"duration": 340,
			"value": 4200
		},
		{
			"origin": "DEL",
			"destination": "TRV",
			"airline": "UK",
			"flight_number": "UK 883",
			"departure_at": "2026-10-18T14:20:00+05:30",
			"transfers": 0,
			"duration": 220,
			"price": "6000"
		}
	]
}`

// SampleNoFaresResponse is a successful envelope without itineraries
const SampleNoFaresResponse = `{"success": true, "data": []}`

// SampleFaresFailureResponse is a failure envelope
const SampleFaresFailureResponse = `{"success": false, "error": "Failed to fetch flight data"}`
