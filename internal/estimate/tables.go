package estimate

import "time"

// baseline is a niche's raw CPM band in USD before any adjustment.
type baseline struct {
	Min float64
	Max float64
}

// nicheBaselines maps a niche to its CPM band. Lookup keys double as
// the vocabulary for niche inference on channel text.
var nicheBaselines = map[string]baseline{
	"tech":      {8, 20},
	"finance":   {12, 35},
	"business":  {10, 25},
	"education": {6, 18},
	"health":    {7, 20},
	"fitness":   {6, 15},
	"beauty":    {5, 14},
	"gaming":    {3, 9},
	"travel":    {4, 12},
	"lifestyle": {4, 12},
	"sports":    {4, 12},
	"default":   {5, 12},
}

// countryMultipliers adjust the band by advertiser market. Codes are
// ISO 3166-1 alpha-2 as reported by the channel snippet (GB and UK
// both appear in the wild).
var countryMultipliers = map[string]float64{
	"US": 1.00,
	"CA": 0.95,
	"GB": 0.95,
	"UK": 0.95,
	"AU": 0.90,
	"DE": 0.90,
	"FR": 0.85,
	"NL": 0.90,
	"SE": 0.90,
	"NO": 0.95,
	"DK": 0.90,
	"FI": 0.85,
	"CH": 1.00,
	"JP": 0.90,
	"SG": 0.95,
	"IN": 0.35,
	"BR": 0.45,
	"MX": 0.50,
	"PH": 0.35,
	"ID": 0.35,
	"ES": 0.75,
	"IT": 0.75,
	"PL": 0.65,
	"TR": 0.45,
	"AE": 0.95,
}

// languageMultipliers back up the geography adjustment when the
// channel hides its country.
var languageMultipliers = map[string]float64{
	"en": 1.00,
	"de": 0.90,
	"fr": 0.85,
	"es": 0.80,
	"pt": 0.75,
	"hi": 0.40,
}

// unknownGeoMultiplier applies when neither country nor language
// resolves.
const unknownGeoMultiplier = 0.80

// seasonality adjusts for the ad-spend calendar: Q4 ramps hard, Q1
// slumps.
var seasonality = map[time.Month]float64{
	time.January:   0.85,
	time.February:  0.90,
	time.March:     0.95,
	time.April:     1.00,
	time.May:       1.00,
	time.June:      0.95,
	time.July:      0.95,
	time.August:    1.00,
	time.September: 1.05,
	time.October:   1.15,
	time.November:  1.25,
	time.December:  1.30,
}
