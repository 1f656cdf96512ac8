package middleware

import (
	"strings"
	"testing"
)

func TestValidateChannelID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid", "UC1234567890abcdef", "UC1234567890abcdef", false},
		{"valid with dash", "UC-abc_def", "UC-abc_def", false},
		{"trims whitespace", "  UCabc  ", "UCabc", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 65), "", true},
		{"invalid chars", "UC abc", "", true},
		{"sql injection", "a'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateChannelID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestValidateKeywords(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
		wantErr bool
	}{
		{"valid", []string{"fitness gear", "home gym"}, 2, false},
		{"drops blanks", []string{"fitness", "", "   "}, 1, false},
		{"all blank", []string{"", "  "}, 0, true},
		{"nil", nil, 0, true},
		{"too many", make([]string, 25), 0, true},
		{"keyword too long", []string{strings.Repeat("x", 101)}, 0, true},
	}
	// Fill the "too many" case with non-blank keywords.
	for _, tt := range tests {
		if tt.name == "too many" {
			for i := range tt.input {
				tt.input[i] = "kw"
			}
		}
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateKeywords(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestValidateCountry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid upper", "US", "US", false},
		{"normalizes lower", "de", "DE", false},
		{"empty allowed", "", "", false},
		{"too long", "USA", "", true},
		{"digits", "1A", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateCountry(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateScrapeURL(t *testing.T) {
	if _, errMsg := ValidateScrapeURL(""); errMsg == "" {
		t.Error("empty url should be rejected")
	}
	if _, errMsg := ValidateScrapeURL(strings.Repeat("a", 3000)); errMsg == "" {
		t.Error("oversized url should be rejected")
	}
	if got, errMsg := ValidateScrapeURL("  example.com  "); errMsg != "" || got != "example.com" {
		t.Errorf("got %q/%q, want trimmed url with no error", got, errMsg)
	}
}

func TestValidateTopN(t *testing.T) {
	if _, errMsg := ValidateTopN(-1); errMsg == "" {
		t.Error("negative topN should be rejected")
	}
	if _, errMsg := ValidateTopN(51); errMsg == "" {
		t.Error("topN above 50 should be rejected")
	}
	if got, errMsg := ValidateTopN(0); errMsg != "" || got != 0 {
		t.Errorf("topN 0 should pass through as default marker")
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/channels/UCabc123", "/api/channels/:channelId"},
		{"/api/channels/export", "/api/channels/export"},
		{"/api/discover", "/api/discover"},
		{"/health/ready", "/health/ready"},
	}
	for _, tt := range tests {
		if got := sanitizePath(tt.in); got != tt.want {
			t.Errorf("sanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
