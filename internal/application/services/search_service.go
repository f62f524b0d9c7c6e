package services

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
	apperrors "github.com/sehatlabs/labtestdiscovery/backend/pkg/errors"
)

const (
	scoreExactName     = 1000
	scorePhraseInName  = 500
	scoreTokenInName   = 100
	scoreTokenSubstr   = 40
	scoreTokenInShort  = 20
	scoreTokenInDesc   = 10
	minRetainedScore   = 30
	topScoreRetainRate = 0.2

	nameScoreExact     = 1000
	nameScoreWholeWord = 500
	nameScoreSubstring = 200
	nameScoreAllWords  = 300
	nameScorePerWord   = 100
	nameScoreThreshold = 150
)

var (
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// Trailing "at <Lab>" qualifiers on display names: parenthesized form
	// first, then the bare trailing form.
	parenLabQualifierRe = regexp.MustCompile(`(?i)\s*\(\s*(?:at|@)\s+[^)]*\)\s*`)
	trailLabQualifierRe = regexp.MustCompile(`(?i)\s+(?:at|@)\s+.+$`)
)

// searchTermsConfig is the on-disk shape of config/search_terms.json.
type searchTermsConfig struct {
	Stopwords []string            `json:"stopwords"`
	Synonyms  map[string][]string `json:"synonyms"`
}

// SearchService ranks catalog tests against free-text queries. The generic
// stopword list and the synonym table are configuration data, not code.
type SearchService struct {
	stopwords map[string]struct{}
	synonyms  map[string][]string
}

// NewSearchService creates a search service from a search-terms config file.
func NewSearchService(configPath string) (*SearchService, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperrors.NewInternalError("reading search terms config", err)
	}

	var cfg searchTermsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.NewInternalError("parsing search terms config", err)
	}

	s := &SearchService{
		stopwords: make(map[string]struct{}, len(cfg.Stopwords)),
		synonyms:  make(map[string][]string, len(cfg.Synonyms)),
	}
	for _, w := range cfg.Stopwords {
		s.stopwords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	for key, terms := range cfg.Synonyms {
		s.synonyms[strings.ToLower(strings.TrimSpace(key))] = terms
	}
	return s, nil
}

// SearchTests scores and ranks the candidate records against a free-text
// query. Only candidates passing the relevance post-filter are returned,
// best first. Order among equal scores is not guaranteed.
func (s *SearchService) SearchTests(query string, candidates []entities.TestRecord) []entities.ScoredTestRecord {
	rawQuery := strings.ToLower(strings.TrimSpace(query))
	tokens := s.tokenize(rawQuery)
	if len(tokens) == 0 {
		return nil
	}

	var scored []entities.ScoredTestRecord
	for _, record := range candidates {
		score := calculateRelevanceScore(record, tokens, rawQuery)
		if score > 0 {
			scored = append(scored, entities.ScoredTestRecord{TestRecord: record, RelevanceScore: score})
		}
	}
	if len(scored) == 0 {
		return nil
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	// Keep "good enough" matches when nothing scores high, prune noise when
	// a dominant match exists.
	topScore := scored[0].RelevanceScore
	filtered := scored[:0]
	for _, sr := range scored {
		if sr.RelevanceScore >= minRetainedScore || float64(sr.RelevanceScore) >= float64(topScore)*topScoreRetainRate {
			filtered = append(filtered, sr)
		}
	}
	return filtered
}

// tokenize lowercases, strips punctuation to whitespace, and suppresses
// generic words — unless doing so would empty the token list.
func (s *SearchService) tokenize(rawQuery string) []string {
	cleaned := punctuationRe.ReplaceAllString(rawQuery, " ")
	tokens := strings.Fields(cleaned)
	if len(tokens) <= 1 {
		return tokens
	}

	specific := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, generic := s.stopwords[tok]; !generic {
			specific = append(specific, tok)
		}
	}
	if len(specific) == 0 {
		return tokens
	}
	return specific
}

func calculateRelevanceScore(record entities.TestRecord, tokens []string, rawQuery string) int {
	name := strings.ToLower(record.TestName)
	if name == rawQuery {
		return scoreExactName
	}

	shortDesc := strings.ToLower(record.ShortDescription)
	desc := strings.ToLower(record.Description)

	score := 0
	if containsWholeWord(name, rawQuery) {
		score += scorePhraseInName
	}

	nameHit := score > 0
	matchedAny := score > 0
	for _, tok := range tokens {
		if len(tok) < 2 {
			continue
		}

		switch {
		case containsWholeWord(name, tok):
			score += scoreTokenInName
			nameHit = true
			matchedAny = true
		case len(tok) > 4 && strings.Contains(name, tok):
			score += scoreTokenSubstr
			nameHit = true
			matchedAny = true
		}

		if containsWholeWord(shortDesc, tok) {
			score += scoreTokenInShort
			matchedAny = true
		}
		if containsWholeWord(desc, tok) {
			score += scoreTokenInDesc
			matchedAny = true
		}
	}

	if !matchedAny {
		return 0
	}

	// Precision guard: a short, vague query whose tokens never hit the name
	// directly must not match on description noise alone.
	if len(tokens) <= 2 && !nameHit && score < 100 {
		return 0
	}
	return score
}

// SearchTestByName looks a test up across all labs, expanding the name
// through the synonym table first. Only candidates clearing the name-score
// threshold are returned, best first.
func (s *SearchService) SearchTestByName(testName string, allTests []entities.TestRecord) []entities.ScoredTestRecord {
	wanted := strings.ToLower(strings.TrimSpace(testName))
	if wanted == "" {
		return nil
	}

	terms := s.expandSearchTerms(wanted)

	var scored []entities.ScoredTestRecord
	for _, record := range allTests {
		best := 0
		name := strings.ToLower(record.TestName)
		for _, term := range terms {
			if v := scoreNameAgainstTerm(name, term); v > best {
				best = v
			}
		}
		if best > nameScoreThreshold {
			scored = append(scored, entities.ScoredTestRecord{TestRecord: record, RelevanceScore: best})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	return scored
}

// expandSearchTerms returns the term itself plus every synonym whose table
// key is contained in the term.
func (s *SearchService) expandSearchTerms(term string) []string {
	terms := []string{term}
	seen := map[string]struct{}{term: {}}

	for key, synonyms := range s.synonyms {
		if !strings.Contains(term, key) {
			continue
		}
		for _, syn := range synonyms {
			syn = strings.ToLower(strings.TrimSpace(syn))
			if syn == "" {
				continue
			}
			if _, ok := seen[syn]; !ok {
				seen[syn] = struct{}{}
				terms = append(terms, syn)
			}
		}
	}
	return terms
}

func scoreNameAgainstTerm(name, term string) int {
	if name == term {
		return nameScoreExact
	}
	if containsWholeWord(name, term) {
		return nameScoreWholeWord
	}
	if strings.Contains(name, term) {
		return nameScoreSubstring
	}

	words := strings.Fields(term)
	matched := 0
	considered := 0
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		considered++
		if strings.Contains(name, w) {
			matched++
		}
	}
	if considered == 0 || matched == 0 {
		return 0
	}
	if matched == considered {
		return nameScoreAllWords
	}
	return nameScorePerWord * matched
}

// FindExactTest returns the first record matching both a lab and a test name.
// Matching is deliberately permissive (bidirectional substring) to tolerate
// partial names typed by users; ties resolve by catalog order.
func (s *SearchService) FindExactTest(labName, testName string, allTests []entities.TestRecord) *entities.TestRecord {
	lab := strings.ToLower(strings.TrimSpace(labName))
	test := strings.ToLower(strings.TrimSpace(testName))
	if lab == "" || test == "" {
		return nil
	}

	for i := range allTests {
		recordLab := strings.ToLower(allTests[i].LabName)
		recordTest := strings.ToLower(allTests[i].TestName)
		labMatch := strings.Contains(recordLab, lab) || strings.Contains(lab, recordLab)
		testMatch := strings.Contains(recordTest, test) || strings.Contains(test, recordTest)
		if labMatch && testMatch {
			return &allTests[i]
		}
	}
	return nil
}

// CleanTestName strips a trailing or parenthetical "at <Lab>" qualifier from
// a display name. Presentation only; stored records are untouched.
func CleanTestName(name string) string {
	cleaned := parenLabQualifierRe.ReplaceAllString(name, " ")
	cleaned = trailLabQualifierRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// containsWholeWord reports whether needle occurs in haystack bounded by
// non-word characters (or the string edges) on both sides.
func containsWholeWord(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	return !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
