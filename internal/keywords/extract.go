// Package keywords pulls ranked search keywords out of a company
// landing page. Contentful tags are scored by weight (title, meta, and
// headings over body text), bigrams are preferred over unigrams, and
// boilerplate navigation words are dropped.
package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTopN is the keyword count returned when the caller does not
// ask for a specific number.
const DefaultTopN = 20

// Keyword is one ranked phrase.
type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

var tokenPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9\-]+`)

var numericPattern = regexp.MustCompile(`^\d+[\w\-]*$`)

var stopwords = toSet(strings.Fields(`
a an and are as at be but by for from has have in is it its of on or
that the their them there these they this to was were will with your
you we us our about into over
`))

// generic covers navigation and call-to-action boilerplate that says
// nothing about what the company sells.
var generic = toSet([]string{
	"home", "about", "contact", "services", "solutions", "learn", "more",
	"read", "policy", "privacy", "terms", "careers", "login", "signup",
	"sign", "up", "get", "started", "request", "demo",
})

// tagWeights score tag buckets; headings and metadata matter more than
// body copy.
var tagWeights = map[string]float64{
	"title": 3.0,
	"meta":  2.5,
	"h1":    3.0,
	"h2":    2.25,
	"h3":    1.75,
	"p":     1.0,
	"li":    1.0,
}

const bigramBoost = 1.5

// titleMetaBonus bumps unigrams that also appear in the page title or
// meta description.
const titleMetaBonus = 1.15

var metaNames = []string{"description", "og:description", "twitter:description", "keywords"}

// Extract ranks the top keywords in an HTML document.
func Extract(htmlText string, topN int) ([]Keyword, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	buckets := collectBuckets(doc)
	return score(buckets, topN), nil
}

// collectBuckets gathers cleaned text per tag bucket.
func collectBuckets(doc *goquery.Document) map[string][]string {
	buckets := make(map[string][]string)

	if title := clean(doc.Find("title").First().Text()); title != "" {
		buckets["title"] = append(buckets["title"], title)
	}

	for _, name := range metaNames {
		sel := doc.Find(`meta[name="` + name + `"]`)
		if sel.Length() == 0 {
			sel = doc.Find(`meta[property="` + name + `"]`)
		}
		if content, ok := sel.First().Attr("content"); ok {
			if cleaned := clean(content); cleaned != "" {
				buckets["meta"] = append(buckets["meta"], cleaned)
			}
		}
	}

	for _, tag := range []string{"h1", "h2", "h3", "p", "li"} {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			txt := clean(s.Text())
			if txt != "" && hasLetter(txt) {
				buckets[tag] = append(buckets[tag], txt)
			}
		})
	}
	return buckets
}

// counter is an insertion-ordered weighted counter, so ties rank in
// first-seen order instead of map order.
type counter struct {
	scores map[string]float64
	order  []string
}

func newCounter() *counter {
	return &counter{scores: make(map[string]float64)}
}

func (c *counter) add(key string, weight float64) {
	if _, ok := c.scores[key]; !ok {
		c.order = append(c.order, key)
	}
	c.scores[key] += weight
}

// ranked returns entries sorted by score descending, ties in insertion
// order.
func (c *counter) ranked() []Keyword {
	out := make([]Keyword, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, Keyword{Phrase: key, Score: c.scores[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func score(buckets map[string][]string, topN int) []Keyword {
	uni := newCounter()
	bi := newCounter()

	for _, tag := range []string{"title", "meta", "h1", "h2", "h3", "p", "li"} {
		weight := tagWeights[tag]
		for _, text := range buckets[tag] {
			var toks []string
			for _, tok := range tokenize(text) {
				if goodWord(tok) {
					toks = append(toks, tok)
				}
			}
			seen := make(map[string]bool, len(toks))
			for _, tok := range toks {
				if !seen[tok] {
					seen[tok] = true
					uni.add(tok, weight)
				}
			}
			for i := 0; i+1 < len(toks); i++ {
				phrase := toks[i] + " " + toks[i+1]
				if goodPhrase(toks[i], toks[i+1]) {
					bi.add(phrase, weight*bigramBoost)
				}
			}
		}
	}

	bigrams := bi.ranked()
	if len(bigrams) > topN {
		bigrams = bigrams[:topN]
	}

	covered := make(map[string]bool)
	for _, kw := range bigrams {
		for _, w := range strings.Fields(kw.Phrase) {
			covered[w] = true
		}
	}

	titleMeta := make(map[string]bool)
	for _, text := range append(append([]string{}, buckets["title"]...), buckets["meta"]...) {
		for _, tok := range tokenize(text) {
			titleMeta[tok] = true
		}
	}

	var unigrams []Keyword
	for _, kw := range uni.ranked() {
		if covered[kw.Phrase] {
			continue
		}
		if titleMeta[kw.Phrase] {
			kw.Score *= titleMetaBonus
		}
		unigrams = append(unigrams, kw)
	}
	sort.SliceStable(unigrams, func(i, j int) bool { return unigrams[i].Score > unigrams[j].Score })

	ranked := bigrams
	if need := topN - len(ranked); need > 0 && len(unigrams) > 0 {
		if need > len(unigrams) {
			need = len(unigrams)
		}
		ranked = append(ranked, unigrams[:need]...)
	}

	seen := make(map[string]bool, len(ranked))
	final := make([]Keyword, 0, len(ranked))
	for _, kw := range ranked {
		canon := strings.Join(strings.Fields(kw.Phrase), " ")
		if seen[canon] {
			continue
		}
		seen[canon] = true
		final = append(final, Keyword{Phrase: canon, Score: round3(kw.Score)})
	}
	if len(final) > topN {
		final = final[:topN]
	}
	return final
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, tok := range raw {
		out[i] = strings.ToLower(tok)
	}
	return out
}

func goodWord(w string) bool {
	if len(w) < 3 {
		return false
	}
	if stopwords[w] || generic[w] {
		return false
	}
	return !numericPattern.MatchString(w)
}

func goodPhrase(a, b string) bool {
	if stopwords[a] || generic[a] || stopwords[b] || generic[b] {
		return false
	}
	return !generic[a+" "+b]
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
