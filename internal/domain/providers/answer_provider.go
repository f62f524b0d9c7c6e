package providers

import (
	"context"
	"errors"
)

// ErrAnswerUnavailable indicates the answer provider is not configured or the
// upstream model could not produce a reply.
var ErrAnswerUnavailable = errors.New("medical answer provider unavailable")

// MedicalAnswerProvider generates a free-text answer to a general medical
// question, grounded on the supplied document context. Implementations must
// constrain replies to medical topics and end them with a SUGGESTIONS line.
type MedicalAnswerProvider interface {
	AnswerMedicalQuestion(ctx context.Context, docContext, question string) (string, error)
}
