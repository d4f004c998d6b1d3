package models

// DefaultOrigin is the departure airport used by the deals catalog
const DefaultOrigin = "DEL"

// DefaultOriginLabel is shown as origin text when a deal is handed off to a search
const DefaultOriginLabel = "New Delhi, India"

// Destination is a static catalog entry for the deals view
type Destination struct {
	Code        string `json:"code"`
	Origin      string `json:"origin"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// DefaultCatalog is the fixed list of featured destinations
var DefaultCatalog = []Destination{
	{
		Code:        "TRV",
		Origin:      DefaultOrigin,
		Label:       "Thiruvananthapuram, Kerala",
		Description: `The "City of Lord Anantha," a coastal capital known for its ancient temples, colonial architecture, and beaches.`,
		Image:       "thiru.jpg",
	},
	{
		Code:        "BOM",
		Origin:      DefaultOrigin,
		Label:       "Mumbai, Maharashtra",
		Description: "A cosmopolitan metropolis, financial capital, and the heart of the Bollywood film industry.",
		Image:       "bom.jpg",
	},
	{
		Code:        "PNQ",
		Origin:      DefaultOrigin,
		Label:       "Pune, Maharashtra",
		Description: "A blend of city life and calmness, known for its historical landmarks and vibrant festivals.",
		Image:       "pune.jpg",
	},
	{
		Code:        "IXL",
		Origin:      DefaultOrigin,
		Label:       "Leh",
		Description: "A high-altitude desert surrounded by the Himalayas, known for its landscapes and monasteries.",
		Image:       "leh.jpg",
	},
	{
		Code:        "CCU",
		Origin:      DefaultOrigin,
		Label:       "Kolkata, West Bengal",
		Description: `The "City of Joy," famous for its rich history, art, and intellectual traditions.`,
		Image:       "kol.jpg",
	},
	{
		Code:        "MAA",
		Origin:      DefaultOrigin,
		Label:       "Chennai, Tamil Nadu",
		Description: "Gateway to South India, known for its Tamil traditions and ancient temples.",
		Image:       "chen.jpg",
	},
	{
		Code:        "AMD",
		Origin:      DefaultOrigin,
		Label:       "Ahmedabad, Gujarat",
		Description: "A historic city and textile hub, famous for its architecture and street food.",
		Image:       "guj.jpg",
	},
}

// CatalogFrom returns a copy of the catalog with every entry departing from origin
func CatalogFrom(catalog []Destination, origin string) []Destination {
	out := make([]Destination, len(catalog))
	copy(out, catalog)
	if origin == "" {
		return out
	}
	for i := range out {
		out[i].Origin = origin
	}
	return out
}
