package questions

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var defaultAbbreviations = map[string]string{
	"aki":  "acute kidney injury",
	"ards": "acute respiratory distress syndrome",
	"bfs":  "breadth first search",
	"ckd":  "chronic kidney disease",
	"copd": "chronic obstructive pulmonary disease",
	"dfs":  "depth first search",
	"dka":  "diabetic ketoacidosis",
	"dp":   "dynamic programming",
	"dvt":  "deep vein thrombosis",
	"ecg":  "electrocardiogram",
	"gcd":  "greatest common divisor",
	"lcm":  "least common multiple",
	"mi":   "myocardial infarction",
	"mst":  "minimum spanning tree",
	"pe":   "pulmonary embolism",
	"scc":  "strongly connected component",
	"sccs": "strongly connected components",
	"sle":  "systemic lupus erythematosus",
	"we":   "wernicke encephalopathy",
	"qft":  "quantum field theory",
	"qm":   "quantum mechanics",
	"gr":   "general relativity",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "with": true,
}

// normalize applies compatibility decomposition and case folding, then
// collapses runs of whitespace.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// words splits a normalized string on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func loose(s string) string {
	return strings.Join(words(s), " ")
}

func (p Policy) matchFuzzy(canonical, answer string) bool {
	c := normalize(canonical)
	a := normalize(answer)
	if c == "" || a == "" {
		return false
	}
	if c == a {
		return true
	}

	for _, alt := range alternatives(c) {
		for _, got := range alternatives(a) {
			if p.matchPhrase(alt, got) {
				return true
			}
		}
	}
	return p.matchKeywords(c, a) || matchNumbers(c, a)
}

// alternatives splits "dinic's algorithm / dinic" into its parts. Numeric
// forms such as "1/6" are left whole.
func alternatives(s string) []string {
	parts := strings.Split(s, "/")
	if len(parts) < 2 {
		return []string{s}
	}
	out := make([]string, 0, len(parts)+1)
	out = append(out, s)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !strings.ContainsFunc(part, unicode.IsLetter) {
			return []string{s}
		}
		out = append(out, part)
	}
	return out
}

func (p Policy) expand(s string) string {
	key := loose(s)
	if long, ok := p.Abbreviations[key]; ok {
		return long
	}
	return key
}

// matchPhrase covers exact, abbreviation and containment matches on the
// punctuation-free forms of both strings.
func (p Policy) matchPhrase(canonical, answer string) bool {
	c := p.expand(canonical)
	a := p.expand(answer)
	if c == "" || a == "" {
		return false
	}
	if c == a {
		return true
	}

	// Single letters and two-character answers only count as the first or
	// last token of the reply ("C) true but unprovable", "the answer is c").
	if utf8.RuneCountInString(c) < 3 {
		tokens := strings.Fields(a)
		return tokens[0] == c || tokens[len(tokens)-1] == c
	}
	if containsPhrase(a, c) {
		return true
	}
	return utf8.RuneCountInString(a) >= 3 && containsPhrase(c, a)
}

// containsPhrase reports whether needle occurs in hay on word boundaries.
func containsPhrase(hay, needle string) bool {
	return strings.Contains(" "+hay+" ", " "+needle+" ")
}

func significant(s string) []string {
	var out []string
	for _, w := range words(s) {
		if utf8.RuneCountInString(w) < 2 || stopwords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// matchKeywords requires KeywordOverlap of the canonical answer's significant
// words to appear in the answer, tolerating near-miss spellings.
func (p Policy) matchKeywords(canonical, answer string) bool {
	want := significant(canonical)
	if len(want) == 0 {
		return false
	}
	got := significant(answer)

	found := 0
	for _, w := range want {
		for _, g := range got {
			if w == g || p.nearMiss(w, g) {
				found++
				break
			}
		}
	}
	return float64(found)/float64(len(want)) >= p.KeywordOverlap
}

func (p Policy) nearMiss(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la < p.MinEditWordLen || lb < p.MinEditWordLen {
		return false
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > p.MaxEditLenDiff {
		return false
	}
	if opposedPrefixes(a, b) {
		return false
	}
	return editDistance(a, b) <= p.MaxEditDistance
}

// contraryPrefixes pairs prefixes whose swap flips a term's meaning, as in
// hyperkalemia and hypokalemia.
var contraryPrefixes = [][2]string{
	{"hyper", "hypo"},
	{"inter", "intra"},
	{"endo", "exo"},
	{"ante", "anti"},
	{"pre", "post"},
	{"in", "ex"},
}

func opposedPrefixes(a, b string) bool {
	for _, pair := range contraryPrefixes {
		x, y := pair[0], pair[1]
		if strings.HasPrefix(a, x) && strings.HasPrefix(b, y) && !strings.HasPrefix(b, x) ||
			strings.HasPrefix(a, y) && strings.HasPrefix(b, x) && !strings.HasPrefix(a, x) {
			return true
		}
	}
	return false
}

// editDistance is the Levenshtein distance over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// matchNumbers is the last resort: every number in the canonical answer must
// appear in the reply, and the two must share at least one context word.
func matchNumbers(canonical, answer string) bool {
	want := numbers(canonical)
	if len(want) == 0 {
		return false
	}
	got := numbers(answer)
	for _, w := range want {
		hit := false
		for _, g := range got {
			if w == g {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	context := make(map[string]bool)
	for _, w := range significant(answer) {
		if !isNumeric(w) {
			context[w] = true
		}
	}
	for _, w := range significant(canonical) {
		if !isNumeric(w) && context[w] {
			return true
		}
	}
	return false
}

func numbers(s string) []float64 {
	var out []float64
	for _, m := range anyFloat.FindAllString(s, -1) {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func isNumeric(w string) bool {
	_, err := strconv.ParseFloat(w, 64)
	return err == nil
}
