package services

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
	apperrors "github.com/sehatlabs/labtestdiscovery/backend/pkg/errors"
)

var (
	// "at/from/in <lab phrase>" up to a lab-ish suffix word, a separator, or
	// the end of the utterance.
	labPhraseRe = regexp.MustCompile(`\b(?:at|from|in)\s+([a-z\s\-]+?)(?:\s+lab\b|\s+hospital\b|\s+centre\b|$|[,.])`)
	labStripRe  = regexp.MustCompile(`\b(?:at|from|in)\s+[a-z\s\-]+?(?:\s+lab\b|\s+hospital\b|\s+centre\b|$|[,.])`)

	testSuffixRe = regexp.MustCompile(`\b([a-z0-9\s\-]+?\s+(?:test|profile|scan|examination|screening))\b`)
)

// Remainders longer than this are treated as prose, not a test mention, so a
// common-test phrase buried inside a full question does not leak out as an
// entity.
const maxTestMentionWords = 4

// entityLexicon is the on-disk shape of config/entity_lexicon.json.
type entityLexicon struct {
	Greetings       []string `json:"greetings"`
	KnownLabs       []string `json:"known_labs"`
	CommonTests     []string `json:"common_tests"`
	PriceKeywords   []string `json:"price_keywords"`
	MedicalKeywords []string `json:"medical_keywords"`
}

// IntentClassifier classifies utterances into intents and extracts lab/test
// entities using fixed vocabularies and patterns. It implements
// providers.EntityExtractor.
type IntentClassifier struct {
	greetings       map[string]struct{}
	knownLabs       []string
	commonTests     []string
	priceKeywords   []string
	medicalKeywords []string
}

// NewIntentClassifier creates a classifier from a lexicon config file.
func NewIntentClassifier(lexiconPath string) (*IntentClassifier, error) {
	data, err := os.ReadFile(lexiconPath)
	if err != nil {
		return nil, apperrors.NewInternalError("reading entity lexicon", err)
	}

	var lex entityLexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, apperrors.NewInternalError("parsing entity lexicon", err)
	}

	c := &IntentClassifier{
		greetings:       make(map[string]struct{}, len(lex.Greetings)),
		knownLabs:       normalizeAll(lex.KnownLabs),
		commonTests:     normalizeAll(lex.CommonTests),
		priceKeywords:   normalizeAll(lex.PriceKeywords),
		medicalKeywords: normalizeAll(lex.MedicalKeywords),
	}
	for _, g := range lex.Greetings {
		c.greetings[strings.ToLower(strings.TrimSpace(g))] = struct{}{}
	}
	return c, nil
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ClassifyIntent classifies a raw utterance. It never fails: malformed input
// degrades to the unknown/unclear intents.
func (c *IntentClassifier) ClassifyIntent(query string) entities.Intent {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entities.Intent{Type: entities.IntentUnknown, Confidence: 0}
	}

	if _, ok := c.greetings[strings.TrimRight(q, "!.?, ")]; ok {
		return entities.Intent{Type: entities.IntentGreeting, Confidence: 1.0}
	}

	labName, _ := c.extractLabName(q)
	testName, _ := c.extractTestName(q)

	// Each entity found adds a flat 0.5, discarding the per-match
	// sub-confidences. Downstream thresholds are tuned against this.
	confidence := 0.0
	if labName != "" {
		confidence += 0.5
	}
	if testName != "" {
		confidence += 0.5
	}

	switch {
	case labName != "" && testName != "":
		return entities.Intent{
			Type:          entities.IntentExactQuery,
			Confidence:    confidence,
			Entities:      entities.IntentEntities{LabName: labName, TestName: testName},
			RequiresPrice: containsAny(q, c.priceKeywords),
		}
	case testName != "":
		return entities.Intent{
			Type:       entities.IntentTestQuery,
			Confidence: confidence,
			Entities:   entities.IntentEntities{TestName: testName},
		}
	case labName != "":
		return entities.Intent{
			Type:       entities.IntentLabOnly,
			Confidence: confidence,
			Entities:   entities.IntentEntities{LabName: labName},
		}
	case containsAny(q, c.medicalKeywords):
		return entities.Intent{Type: entities.IntentMedicalQuestion, Confidence: 0.7}
	default:
		return entities.Intent{Type: entities.IntentUnclear, Confidence: 0.3}
	}
}

// extractLabName finds a lab entity. The positional "at <lab>" pattern wins
// over a bare mention anywhere in the query.
func (c *IntentClassifier) extractLabName(q string) (string, float64) {
	if m := labPhraseRe.FindStringSubmatch(q); len(m) >= 2 {
		captured := strings.TrimSpace(m[1])
		if lab := c.matchKnownLab(captured); lab != "" {
			return lab, 0.9
		}
	}

	for _, lab := range c.knownLabs {
		if containsWholeWord(q, lab) {
			return lab, 0.7
		}
	}
	return "", 0
}

// matchKnownLab fuzzy-matches captured text against the known-lab list:
// exact first, then substring in either direction.
func (c *IntentClassifier) matchKnownLab(captured string) string {
	if captured == "" {
		return ""
	}
	for _, lab := range c.knownLabs {
		if captured == lab {
			return lab
		}
	}
	for _, lab := range c.knownLabs {
		if strings.Contains(captured, lab) || strings.Contains(lab, captured) {
			return lab
		}
	}
	return ""
}

// extractTestName finds a test entity, stripping any lab phrase first so the
// lab name cannot leak into the test name.
func (c *IntentClassifier) extractTestName(q string) (string, float64) {
	remainder := strings.TrimSpace(labStripRe.ReplaceAllString(q, " "))
	remainder = strings.Join(strings.Fields(remainder), " ")

	if len(strings.Fields(remainder)) <= maxTestMentionWords {
		for _, test := range c.commonTests {
			if containsWholeWord(remainder, test) {
				return test, 0.8
			}
		}
	}

	if m := testSuffixRe.FindStringSubmatch(remainder); len(m) >= 2 {
		return strings.TrimSpace(m[1]), 0.6
	}

	words := strings.Fields(remainder)
	if len(words) > 0 && len(words) <= 3 && len(remainder) > 2 && c.matchKnownLab(remainder) == "" {
		return remainder, 0.5
	}
	return "", 0
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
