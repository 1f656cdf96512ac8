package keywords

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Acme Fitness Equipment</title>
<meta name="description" content="Premium fitness equipment for home gyms">
</head>
<body>
<h1>Fitness Equipment Built to Last</h1>
<h2>Home Gym Essentials</h2>
<p>Our fitness equipment helps athletes train at home.</p>
<p>Browse dumbbells, racks, and benches for your home gym.</p>
<li>Free shipping</li>
<nav><p>Privacy policy terms careers login</p></nav>
</body>
</html>`

func TestExtractRanksBigramsFirst(t *testing.T) {
	kws, err := Extract(samplePage, 10)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(kws) == 0 {
		t.Fatal("Extract() returned no keywords")
	}

	// "fitness equipment" appears in the title, h1, and a paragraph,
	// all heavily weighted; it has to lead.
	if kws[0].Phrase != "fitness equipment" {
		t.Errorf("top keyword = %q, want \"fitness equipment\"", kws[0].Phrase)
	}

	found := false
	for _, kw := range kws {
		if kw.Phrase == "home gym" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected \"home gym\" among keywords, got %v", kws)
	}
}

func TestExtractDropsBoilerplate(t *testing.T) {
	kws, err := Extract(samplePage, 20)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, kw := range kws {
		for _, word := range strings.Fields(kw.Phrase) {
			if generic[word] || stopwords[word] {
				t.Errorf("boilerplate word %q leaked into keyword %q", word, kw.Phrase)
			}
		}
	}
}

func TestExtractScoresDescend(t *testing.T) {
	kws, err := Extract(samplePage, 20)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// Bigrams rank as a block before unigrams; scores descend within
	// each block.
	inUnigrams := false
	prev := -1.0
	for i, kw := range kws {
		isBigram := strings.Contains(kw.Phrase, " ")
		if isBigram && inUnigrams {
			t.Fatalf("bigram %q at index %d after unigrams began", kw.Phrase, i)
		}
		if !isBigram && !inUnigrams {
			inUnigrams = true
			prev = -1.0
		}
		if prev >= 0 && kw.Score > prev {
			t.Errorf("score at %d (%v) exceeds previous (%v)", i, kw.Score, prev)
		}
		prev = kw.Score
	}
}

func TestExtractHonorsTopN(t *testing.T) {
	kws, err := Extract(samplePage, 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(kws) > 3 {
		t.Errorf("len = %d, want at most 3", len(kws))
	}
}

func TestGoodWordFilters(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"fitness", true},
		{"ai", false},     // too short
		{"the", false},    // stopword
		{"signup", false}, // boilerplate
		{"saas", true},
	}
	for _, tt := range tests {
		if got := goodWord(tt.word); got != tt.want {
			t.Errorf("goodWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com/a", "http://example.com/a"},
		{"example.com", "https://example.com"},
		{"//example.com", "https://example.com"},
		{"  example.com", "https://example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScraperFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "DreamwellKeywordScraper") {
			t.Errorf("User-Agent = %q", ua)
		}
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	s := NewScraper(time.Second)
	kws, err := s.FromURL(context.Background(), srv.URL, 5)
	if err != nil {
		t.Fatalf("FromURL() error = %v", err)
	}
	if len(kws) == 0 || len(kws) > 5 {
		t.Errorf("len(kws) = %d, want 1..5", len(kws))
	}
}

func TestScraperFromURLNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewScraper(time.Second).FromURL(context.Background(), srv.URL, 5); err == nil {
		t.Error("want error for 404 page")
	}
}
