package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/budgetly/budgetly/backend/internal/service/ai"
	"github.com/budgetly/budgetly/backend/internal/service/conversation"
)

var ErrGeneratorUnavailable = errors.New("text generation is not configured")

// SpendingEntry is one line of spending history sent by the client. Amount is
// kept as raw JSON text so numbers and strings render the way they were sent.
type SpendingEntry struct {
	Date     string
	Category string
	Amount   string
}

// Service answers the AI insight endpoints. Only Generate and Reset touch the
// conversation store; the one-shot helpers go straight to the generator.
type Service struct {
	generator     ai.Generator
	conversations *conversation.Store
	locker        *conversation.Locker
}

// Option customises a Service.
type Option func(*Service)

// WithSerializedExchanges runs overlapping Generate calls for one user in order
// instead of letting the last commit win.
func WithSerializedExchanges(locker *conversation.Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func NewService(generator ai.Generator, conversations *conversation.Store, opts ...Option) *Service {
	s := &Service{
		generator:     generator,
		conversations: conversations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a generator is wired in.
func (s *Service) Available() bool {
	return s.generator != nil
}

// Generate runs one conversational exchange for userID and returns the cleaned
// model text. Nothing is stored when the model call fails.
func (s *Service) Generate(ctx context.Context, userID, prompt string) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}
	if s.locker == nil {
		return s.exchange(ctx, userID, prompt)
	}

	var cleaned string
	err := s.locker.WithLock(userID, func() error {
		var err error
		cleaned, err = s.exchange(ctx, userID, prompt)
		return err
	})
	return cleaned, err
}

func (s *Service) exchange(ctx context.Context, userID, prompt string) (string, error) {
	fullPrompt, previous := s.conversations.AppendExchange(userID, prompt)

	raw, err := s.generator.Generate(ctx, fullPrompt)
	if err != nil {
		return "", err
	}

	return s.conversations.CommitExchange(userID, previous, prompt, raw), nil
}

// Reset drops the stored conversation for userID.
func (s *Service) Reset(userID string) {
	s.conversations.Reset(userID)
}

// PredictBudget asks for next month's budget broken down by category.
func (s *Service) PredictBudget(ctx context.Context, history []SpendingEntry) (string, error) {
	return s.oneShot(ctx, BuildPredictBudgetPrompt(history))
}

// SuggestSavings asks for ways to cut the given spending.
func (s *Service) SuggestSavings(ctx context.Context, data []SpendingEntry) (string, error) {
	return s.oneShot(ctx, BuildSuggestSavingsPrompt(data))
}

// ChatFinance answers a free-text finance question.
func (s *Service) ChatFinance(ctx context.Context, question string) (string, error) {
	return s.oneShot(ctx, BuildChatFinancePrompt(question))
}

func (s *Service) oneShot(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}
	return s.generator.Generate(ctx, prompt)
}

func BuildPredictBudgetPrompt(history []SpendingEntry) string {
	lines := make([]string, len(history))
	for i, item := range history {
		lines[i] = fmt.Sprintf("- %s: %s - %s", item.Date, item.Category, item.Amount)
	}
	return "\n    Based on the following spending history:\n    " +
		strings.Join(lines, "\n") +
		"\n    Predict the budget for the next month by category and provide a breakdown.\n  "
}

func BuildSuggestSavingsPrompt(data []SpendingEntry) string {
	lines := make([]string, len(data))
	for i, item := range data {
		lines[i] = fmt.Sprintf("- %s: %s", item.Category, item.Amount)
	}
	return "\n    Analyze the following spending data and suggest ways to save money:\n    " +
		strings.Join(lines, "\n") +
		"\n  "
}

func BuildChatFinancePrompt(question string) string {
	return "\n    User asked: \"" + question + "\"\n    Provide a helpful financial tip or response in simple terms.\n  "
}
