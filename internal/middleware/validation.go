package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field limits matching the database schema and the provider's formats.
const (
	MaxChannelIDLen = 64
	MaxKeywordLen   = 100
	MaxKeywords     = 20
	MaxValueLen     = 60
	MaxValues       = 15
	MaxURLLen       = 2048
	MaxTopN         = 50
)

var (
	// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
	channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// countryRe matches ISO 3166-1 alpha-2 codes.
	countryRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 64 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}

// ValidateKeywords trims, bounds, and de-blanks the keyword list.
func ValidateKeywords(keywords []string) ([]string, string) {
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len(kw) > MaxKeywordLen {
			return nil, "each keyword must be at most 100 characters"
		}
		out = append(out, kw)
	}
	if len(out) == 0 {
		return nil, "at least one non-empty keyword is required"
	}
	if len(out) > MaxKeywords {
		return nil, "at most 20 keywords per request"
	}
	return out, ""
}

// ValidateCountry checks an optional two-letter country code.
func ValidateCountry(country string) (string, string) {
	country = strings.TrimSpace(country)
	if country == "" {
		return "", ""
	}
	if !countryRe.MatchString(country) {
		return "", "country must be a two-letter code"
	}
	return strings.ToUpper(country), ""
}

// ValidateValues bounds the buyer's brand-value list.
func ValidateValues(values []string) ([]string, string) {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if len(v) > MaxValueLen {
			return nil, "each value must be at most 60 characters"
		}
		out = append(out, v)
	}
	if len(out) > MaxValues {
		return nil, "at most 15 values per request"
	}
	return out, ""
}

// ValidateScrapeURL checks the keyword-scrape target URL.
func ValidateScrapeURL(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "url is required"
	}
	if len(raw) > MaxURLLen {
		return "", "url is too long"
	}
	return raw, ""
}

// ValidateTopN bounds the requested keyword count; zero means default.
func ValidateTopN(n int) (int, string) {
	if n < 0 {
		return 0, "topN must be non-negative"
	}
	if n > MaxTopN {
		return 0, "topN must be at most 50"
	}
	return n, ""
}
