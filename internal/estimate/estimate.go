// Package estimate prices a channel from public signals: a CPM band
// for the niche adjusted by geography, seasonality, engagement, and
// reach, then an RPM band, a suggested sponsorship price, and an
// expected-profit band for a product with known unit margin. All
// outputs are USD rounded to cents.
package estimate

import (
	"math"
	"strings"
	"time"
)

// Inputs carry everything the pricing model reads. Engagement and
// Subscribers are nil when the underlying signal is unavailable, which
// neutralizes the corresponding scaler rather than zeroing it.
type Inputs struct {
	Niche       string
	Country     string
	Language    string
	Month       time.Month
	AvgViews    float64
	Engagement  *float64
	Subscribers *int64
}

// Result is the full pricing output for one channel.
type Result struct {
	Niche     string  `json:"niche"`
	CPMMin    float64 `json:"cpmMin"`
	CPMMax    float64 `json:"cpmMax"`
	RPMMin    float64 `json:"rpmMin"`
	RPMMax    float64 `json:"rpmMax"`
	PriceMin  float64 `json:"priceMin"`
	PriceMax  float64 `json:"priceMax"`
	ProfitMin float64 `json:"profitMin"`
	ProfitMax float64 `json:"profitMax"`
}

// Estimate runs the whole model. productProfit is the buyer's profit
// per unit sold; zero or negative disables the profit band.
func Estimate(in Inputs, productProfit float64) Result {
	cpmMin, cpmMax := CPMRange(in)
	rpmMin, rpmMax := RPMRange(cpmMin, cpmMax)
	priceMin, priceMax := SuggestedPrice(in, cpmMin, cpmMax, rpmMin, rpmMax)
	profitMin, profitMax := ExpectedProfit(in, productProfit, rpmMin, rpmMax, priceMin, priceMax)
	return Result{
		Niche:     NormalizeNiche(in.Niche),
		CPMMin:    cpmMin,
		CPMMax:    cpmMax,
		RPMMin:    rpmMin,
		RPMMax:    rpmMax,
		PriceMin:  priceMin,
		PriceMax:  priceMax,
		ProfitMin: profitMin,
		ProfitMax: profitMax,
	}
}

// CPMRange returns the channel's adjusted CPM band.
func CPMRange(in Inputs) (float64, float64) {
	base := nicheBaselines[NormalizeNiche(in.Niche)]
	mult := geoMultiplier(in.Country, in.Language) *
		seasonalMultiplier(in.Month) *
		engagementMultiplier(in.Engagement) *
		recencyMultiplier(in.AvgViews, in.Subscribers)
	return round2(base.Min * mult), round2(base.Max * mult)
}

// RPMRange derives creator-side revenue per mille from the CPM band,
// at platform revenue-share rates.
func RPMRange(cpmMin, cpmMax float64) (float64, float64) {
	return round2(0.55 * cpmMin), round2(0.65 * cpmMax)
}

// SuggestedPrice returns a flat-fee sponsorship range for one
// integration. Channels without view history price at zero.
func SuggestedPrice(in Inputs, cpmMin, cpmMax, rpmMin, rpmMax float64) (float64, float64) {
	if in.AvgViews <= 0 {
		return 0, 0
	}

	avgCPM := (cpmMin + cpmMax) / 2
	base := (in.AvgViews / 1000) * avgCPM

	adjusted := base *
		subscriberTier(in.Subscribers) *
		engagementTier(in.Engagement) *
		rpmQualityTier((rpmMin + rpmMax) / 2)

	min := 0.8 * adjusted
	max := 1.2 * adjusted
	if min < 50 {
		min = 50
	}
	if max < 1.2*min {
		max = 1.2 * min
	}
	return round2(min), round2(max)
}

// ExpectedProfit returns the buyer's profit band for a sponsorship:
// estimated conversions times unit profit, minus the fee. Requires a
// positive unit margin and real view history; bounds are floored at
// zero and kept ordered.
func ExpectedProfit(in Inputs, productProfit, rpmMin, rpmMax, priceMin, priceMax float64) (float64, float64) {
	if productProfit <= 0 || in.AvgViews <= 0 {
		return 0, 0
	}

	conv := 0.001 *
		conversionEngagement(in.Engagement) *
		conversionQuality((rpmMin+rpmMax)/2) *
		subscriberTier(in.Subscribers)
	if conv > 0.05 {
		conv = 0.05
	}

	unitsMin := float64(int64(in.AvgViews * conv * 0.8))
	unitsMax := float64(int64(in.AvgViews * conv * 1.2))

	min := unitsMin*productProfit - priceMax
	max := unitsMax*productProfit - priceMin
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return round2(min), round2(max)
}

// NormalizeNiche maps a free-form niche label to its baseline band by
// substring ("fitness coach" prices in the fitness band), falling back
// to the default band.
func NormalizeNiche(niche string) string {
	key := strings.ToLower(strings.TrimSpace(niche))
	for _, name := range nicheOrder() {
		if strings.Contains(key, name) {
			return name
		}
	}
	return "default"
}

// InferNiche picks the first niche whose name appears in the channel's
// title or description, falling back to the default band.
func InferNiche(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, niche := range nicheOrder() {
		if strings.Contains(text, niche) {
			return niche
		}
	}
	return "default"
}

// nicheOrder is the deterministic scan order for inference; map
// iteration would make results flap between runs.
func nicheOrder() []string {
	return []string{
		"tech", "finance", "business", "education", "health",
		"fitness", "beauty", "gaming", "travel", "lifestyle", "sports",
	}
}

func geoMultiplier(country, language string) float64 {
	if m, ok := countryMultipliers[strings.ToUpper(strings.TrimSpace(country))]; ok {
		return m
	}
	if m, ok := languageMultipliers[strings.ToLower(strings.TrimSpace(language))]; ok {
		return m
	}
	return unknownGeoMultiplier
}

func seasonalMultiplier(month time.Month) float64 {
	if m, ok := seasonality[month]; ok {
		return m
	}
	return 1.0
}

// engagementMultiplier centers on a 3% engagement rate: each extra
// point of engagement moves the band 12%, clamped to [0.7, 1.5].
func engagementMultiplier(engagement *float64) float64 {
	if engagement == nil {
		return 1.0
	}
	er := clamp(*engagement, 0, 0.2)
	return clamp(1+(er-0.03)/0.01*0.12, 0.7, 1.5)
}

// recencyMultiplier compares recent average views to subscriber count:
// a channel out-performing its subscriber base prices up. Either side
// missing or zero is no signal, not a penalty.
func recencyMultiplier(avgViews float64, subscribers *int64) float64 {
	if avgViews <= 0 || subscribers == nil || *subscribers <= 0 {
		return 1.0
	}
	ratio := clamp(avgViews/float64(*subscribers), 0.05, 0.4)
	return clamp(math.Sqrt(ratio/0.1), 0.7, 1.3)
}

func subscriberTier(subscribers *int64) float64 {
	if subscribers == nil {
		return 1.0
	}
	switch subs := *subscribers; {
	case subs >= 1_000_000:
		return 1.5
	case subs >= 500_000:
		return 1.3
	case subs >= 100_000:
		return 1.1
	case subs >= 10_000:
		return 1.0
	default:
		return 0.8
	}
}

// engagementTier scales the fee by measured engagement. A missing or
// zero rate is no signal and leaves the fee untouched.
func engagementTier(engagement *float64) float64 {
	if engagement == nil || *engagement <= 0 {
		return 1.0
	}
	switch er := *engagement; {
	case er >= 0.10:
		return 1.4
	case er >= 0.05:
		return 1.2
	case er >= 0.02:
		return 1.0
	default:
		return 0.8
	}
}

func rpmQualityTier(avgRPM float64) float64 {
	switch {
	case avgRPM >= 5:
		return 1.3
	case avgRPM >= 2:
		return 1.1
	default:
		return 0.9
	}
}

func conversionEngagement(engagement *float64) float64 {
	if engagement == nil {
		return 1.0
	}
	switch er := *engagement; {
	case er >= 0.10:
		return 3.0
	case er >= 0.05:
		return 2.0
	case er >= 0.02:
		return 1.5
	default:
		return 1.0
	}
}

func conversionQuality(avgRPM float64) float64 {
	switch {
	case avgRPM >= 5:
		return 2.0
	case avgRPM >= 2:
		return 1.5
	default:
		return 1.0
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
