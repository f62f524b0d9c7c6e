package providers

import "github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"

// EntityExtractor classifies a raw utterance into an intent and extracts
// lab/test entities from it. The conversation router depends on this
// capability only, so the matching strategy can be swapped without touching
// the state machine.
type EntityExtractor interface {
	ClassifyIntent(query string) entities.Intent
}
