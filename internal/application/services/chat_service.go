package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/catalog"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/providers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Document context handed to the answer provider is capped at this many
	// characters.
	maxAnswerContextChars = 30000

	medicalAnswerCacheTTL = 86400 // seconds

	maxLabsListed = 5

	defaultSuggestions = "SUGGESTIONS: Test prices | Find a lab | Book a test"
	bookSuggestion     = "SUGGESTIONS: Book this test | Search another test"

	apologyResponse = "Sorry, something went wrong while answering that. Please try again."
)

var foundTestRe = regexp.MustCompile(`I found \*\*?([^*]+)\*\*? at`)

// Words that mark a user message as a test mention during context recovery,
// and the filler words stripped from it before reuse.
var (
	testMentionMarkers = []string{"test", "count", "cbc"}
	testMentionFillers = map[string]struct{}{"test": {}, "price": {}}
)

// ChatService is the conversation router: it classifies each utterance,
// resolves entities against the catalog, and picks a response path. It holds
// no per-session state; history arrives with every request.
type ChatService struct {
	catalog   *catalog.Service
	search    *SearchService
	extractor providers.EntityExtractor
	answerer  providers.MedicalAnswerProvider
	cache     providers.CacheProvider
}

// NewChatService creates the router. answerer and cache may be nil; the
// medical-question path then degrades to an apology and answers are simply
// not cached.
func NewChatService(
	cat *catalog.Service,
	search *SearchService,
	extractor providers.EntityExtractor,
	answerer providers.MedicalAnswerProvider,
	cache providers.CacheProvider,
) *ChatService {
	return &ChatService{
		catalog:   cat,
		search:    search,
		extractor: extractor,
		answerer:  answerer,
		cache:     cache,
	}
}

// Respond handles one chat turn. It never panics or errors across its
// boundary: any failure while generating a response is converted into a
// generic apology plus a machine-readable error signal.
func (s *ChatService) Respond(ctx context.Context, message string, history []entities.ConversationTurn) (resp entities.ChatResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("chat turn panicked")
			resp = entities.ChatResponse{Response: apologyResponse, Error: "chat_generation_failed"}
		}
	}()

	// Pre-intent override: booking requests bypass the state machine.
	if strings.Contains(strings.ToLower(message), "book this test") {
		recordChatTurn(ctx, "booking_override")
		return entities.ChatResponse{
			Response: "To book a test, please head to the Labs page, pick your lab, and select the test there.\n" + defaultSuggestions,
		}
	}

	intent := s.extractor.ClassifyIntent(message)
	recordChatTurn(ctx, string(intent.Type))

	text, err := s.respondToIntent(ctx, intent, message, history)
	if err != nil {
		log.Error().Err(err).Str("intent", string(intent.Type)).Msg("chat response generation failed")
		return entities.ChatResponse{Response: apologyResponse, Error: "chat_generation_failed"}
	}
	return entities.ChatResponse{Response: text}
}

func (s *ChatService) respondToIntent(ctx context.Context, intent entities.Intent, message string, history []entities.ConversationTurn) (string, error) {
	switch intent.Type {
	case entities.IntentGreeting:
		return "Hello! I can help you find lab tests, compare prices across labs, and answer general health questions.\n" + defaultSuggestions, nil

	case entities.IntentExactQuery:
		return s.respondExactQuery(ctx, intent.Entities.LabName, intent.Entities.TestName), nil

	case entities.IntentTestQuery:
		return s.respondTestQuery(ctx, intent.Entities.TestName), nil

	case entities.IntentLabOnly:
		return s.respondLabOnly(ctx, intent.Entities.LabName, history), nil

	case entities.IntentMedicalQuestion:
		return s.respondMedicalQuestion(ctx, message)

	default:
		return s.respondUnclear(ctx, message, history), nil
	}
}

func (s *ChatService) respondExactQuery(ctx context.Context, labName, testName string) string {
	record := s.search.FindExactTest(labName, testName, s.catalog.Tests(ctx))
	if record == nil {
		recordZeroResult(ctx, "exact_query")
		return fmt.Sprintf("Sorry, I couldn't find **%s** at %s. It may be listed under a different name.\n%s",
			CleanTestName(testName), titleCase(labName), bookSuggestion)
	}
	return formatTestAnswer(record) + "\n" + bookSuggestion
}

func (s *ChatService) respondTestQuery(ctx context.Context, testName string) string {
	matches := s.search.SearchTestByName(testName, s.catalog.Tests(ctx))
	if len(matches) == 0 {
		recordZeroResult(ctx, "test_query")
		return fmt.Sprintf("Sorry, I couldn't find a test matching **%s** at any of our partner labs.\n%s",
			CleanTestName(testName), defaultSuggestions)
	}

	labs := distinctLabs(matches)
	if len(labs) == 1 {
		return formatTestAnswer(&matches[0].TestRecord) + "\n" + bookSuggestion
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "I found **%s** at multiple labs:\n", CleanTestName(matches[0].TestName))
	for i, lab := range labs {
		if i >= maxLabsListed {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, lab)
	}
	sb.WriteString("Which lab would you like the price for?")
	return sb.String()
}

func (s *ChatService) respondLabOnly(ctx context.Context, labName string, history []entities.ConversationTurn) string {
	if recovered := recoverTestFromHistory(history); recovered != "" {
		return s.respondExactQuery(ctx, labName, recovered)
	}
	return fmt.Sprintf("Which test are you looking for at %s?\n%s", titleCase(labName), defaultSuggestions)
}

func (s *ChatService) respondMedicalQuestion(ctx context.Context, question string) (string, error) {
	if s.answerer == nil {
		return "", providers.ErrAnswerUnavailable
	}

	cacheKey := "chat:medical:" + strings.Join(strings.Fields(strings.ToLower(question)), " ")
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			return string(cached), nil
		}
	}

	docContext := s.catalog.DocumentContext(ctx)
	if len(docContext) > maxAnswerContextChars {
		docContext = docContext[:maxAnswerContextChars]
	}

	answer, err := s.answerer.AnswerMedicalQuestion(ctx, docContext, question)
	if err != nil {
		return "", err
	}
	if !strings.Contains(answer, "SUGGESTIONS:") {
		answer = strings.TrimRight(answer, "\n") + "\n" + defaultSuggestions
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, []byte(answer), medicalAnswerCacheTTL)
	}
	return answer, nil
}

// respondUnclear is the two-stage fallback: recover entities from history,
// then try a bare cross-lab search, then ask for clarification.
func (s *ChatService) respondUnclear(ctx context.Context, message string, history []entities.ConversationTurn) string {
	recovered := recoverTestFromHistory(history)
	if recovered != "" {
		if lab := s.fuzzyMatchLab(ctx, message); lab != "" {
			return s.respondExactQuery(ctx, lab, recovered)
		}
	}

	if matches := s.search.SearchTestByName(message, s.catalog.Tests(ctx)); len(matches) > 0 {
		return s.respondTestQuery(ctx, message)
	}

	recordZeroResult(ctx, "unclear")
	return "I'm not sure what you're looking for. You can ask about a test, a lab, or a price — for example \"CBC price at Chughtai Lab\".\n" + defaultSuggestions
}

// fuzzyMatchLab matches the raw message against the loaded catalog's lab
// names by bidirectional substring.
func (s *ChatService) fuzzyMatchLab(ctx context.Context, message string) string {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return ""
	}
	for _, lab := range s.catalog.Labs(ctx) {
		name := strings.ToLower(lab.Name)
		if strings.Contains(m, name) || strings.Contains(name, m) {
			return lab.Name
		}
	}
	return ""
}

// recoverTestFromHistory scans the conversation backward for the most recent
// test mention: either a user message naming a test, or an assistant reply of
// the form "I found **X** at".
func recoverTestFromHistory(history []entities.ConversationTurn) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}

		switch turn.Role {
		case entities.RoleAssistant:
			if m := foundTestRe.FindStringSubmatch(content); len(m) >= 2 {
				return strings.TrimSpace(m[1])
			}
		case entities.RoleUser:
			lower := strings.ToLower(content)
			for _, marker := range testMentionMarkers {
				if strings.Contains(lower, marker) {
					if name := stripTestFillers(lower); name != "" {
						return name
					}
					break
				}
			}
		}
	}
	return ""
}

func stripTestFillers(message string) string {
	words := strings.Fields(message)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, filler := testMentionFillers[strings.Trim(w, "?.!,")]; filler {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func formatTestAnswer(record *entities.TestRecord) string {
	name := CleanTestName(record.TestName)
	answer := fmt.Sprintf("I found **%s** at %s.", name, record.LabName)

	switch {
	case record.SalePrice > 0 && record.DiscountPercentage > 0:
		answer += fmt.Sprintf(" Price: Rs. %.0f (%d%% off, was Rs. %.0f).",
			record.SalePrice, record.DiscountPercentage, record.RegularPrice)
	case record.SalePrice > 0:
		answer += fmt.Sprintf(" Price: Rs. %.0f.", record.SalePrice)
	default:
		answer += " Price is not listed; please contact the lab."
	}
	return answer
}

func distinctLabs(matches []entities.ScoredTestRecord) []string {
	seen := make(map[string]struct{}, len(matches))
	var labs []string
	for _, m := range matches {
		if _, ok := seen[m.LabName]; !ok {
			seen[m.LabName] = struct{}{}
			labs = append(labs, m.LabName)
		}
	}
	return labs
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var (
	chatMetricsOnce  sync.Once
	chatTurnCounter  metric.Int64Counter
	zeroResultsCount metric.Int64Counter
)

func initChatMetrics() {
	meter := otel.Meter("github.com/sehatlabs/labtestdiscovery/backend/chat")
	if counter, err := meter.Int64Counter(
		"chat.turn.count",
		metric.WithDescription("Count of chat turns by resolved intent"),
	); err == nil {
		chatTurnCounter = counter
	}
	if counter, err := meter.Int64Counter(
		"chat.search.zero_results",
		metric.WithDescription("Count of chat turns whose search produced no results"),
	); err == nil {
		zeroResultsCount = counter
	}
}

func recordChatTurn(ctx context.Context, intent string) {
	chatMetricsOnce.Do(initChatMetrics)
	if chatTurnCounter == nil {
		return
	}
	chatTurnCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("chat.intent", intent)))
}

func recordZeroResult(ctx context.Context, path string) {
	chatMetricsOnce.Do(initChatMetrics)
	if zeroResultsCount == nil {
		return
	}
	zeroResultsCount.Add(ctx, 1, metric.WithAttributes(attribute.String("chat.path", path)))
}
