package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

// Separator joins non-adjacent chunks in an excerpt.
const Separator = "\n\n[...]\n\n"

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"are": {}, "was": {}, "our": {}, "how": {}, "what": {}, "why": {}, "can": {},
	"should": {}, "into": {}, "have": {}, "has": {}, "will": {}, "not": {}, "all": {},
}

// Excerpt returns the chunks of doc most similar to query, kept in document
// order, within budget tokens. A document that already fits is returned
// whole; a first-ranked chunk that alone exceeds the budget is truncated.
func Excerpt(query, doc string, budget int) string {
	doc = strings.TrimSpace(doc)
	if budget <= 0 || doc == "" {
		return ""
	}
	if utils.CountTokens(doc) <= budget {
		return doc
	}
	// small chunks relative to the budget leave room to mix sections
	chunks := ChunkByTokens(doc, min(DefaultChunkTokens, max(budget/4, 1)), 0)
	q := termVector(query)
	scores := make([]float64, len(chunks))
	order := make([]int, len(chunks))
	for i, c := range chunks {
		scores[i] = CosineSim(q, termVector(c))
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	var picked []int
	used := 0
	for _, i := range order {
		n := utils.CountTokens(chunks[i])
		if used+n > budget {
			continue
		}
		picked = append(picked, i)
		used += n
	}
	if len(picked) == 0 {
		return utils.TruncateToTokenLimit(chunks[order[0]], budget)
	}
	sort.Ints(picked)
	parts := make([]string, 0, len(picked))
	for k, i := range picked {
		if k > 0 && i != picked[k-1]+1 {
			parts = append(parts, Separator)
		} else if k > 0 {
			parts = append(parts, "\n\n")
		}
		parts = append(parts, chunks[i])
	}
	return strings.Join(parts, "")
}

// termVector counts lower-cased words of three or more letters, minus
// stopwords.
func termVector(text string) map[string]float64 {
	v := map[string]float64{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		v[w]++
	}
	return v
}

// CosineSim is the cosine similarity of two sparse term vectors; zero when
// either is empty.
func CosineSim(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for k, x := range a {
		na += x * x
		dot += x * b[k]
	}
	for _, y := range b {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
