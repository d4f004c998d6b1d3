package api

const (
	// PlacesBaseURL is the default base URL of the city autocomplete service
	PlacesBaseURL = "https://autocomplete.travelpayouts.com"

	// FaresBaseURL is the default base URL of the fare service
	FaresBaseURL = "http://localhost:5000"

	// EndpointPlaces resolves free text to cities and airports
	// Required params: term, locale
	EndpointPlaces = "/places2"

	// EndpointFares returns priced itineraries for one route and day
	// Required params: origin, destination, depart_date, one_way
	EndpointFares = "/api/flights/search"
)

// DefaultLocale is the language of place names
const DefaultLocale = "en"

// DefaultCurrency is the currency fares are requested in
const DefaultCurrency = "inr"
