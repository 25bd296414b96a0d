package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgetly/budgetly/backend/internal/config"
)

type fakeChatModel struct {
	mu       sync.Mutex
	received []*schema.Message
	reply    string
	err      error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.received = input
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.reply, nil)}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.text, s.err }
func (s stubGenerator) Provider() string                               { return "stub" }

type recordedCall struct {
	provider string
	err      error
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) RecordGenerate(provider string, err error, _ time.Duration) {
	r.calls = append(r.calls, recordedCall{provider: provider, err: err})
}

func TestArkGeneratorSendsPromptAsUserMessage(t *testing.T) {
	fake := &fakeChatModel{reply: "Spend less on coffee."}
	gen, err := newArkGenerator(context.Background(), fake)
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "\nYou: how can I save?\nAI:")
	require.NoError(t, err)

	assert.Equal(t, "Spend less on coffee.", text)
	require.Len(t, fake.received, 1)
	assert.Equal(t, schema.User, fake.received[0].Role)
	assert.Equal(t, "\nYou: how can I save?\nAI:", fake.received[0].Content)
	assert.Equal(t, config.ProviderArk, gen.Provider())
}

func TestArkGeneratorWrapsModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("quota exceeded")}
	gen, err := newArkGenerator(context.Background(), fake)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "hello there")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNewGeneratorRequiresGeminiKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.AIConfig{Provider: config.ProviderGemini})
	require.ErrorIs(t, err, errMissingGeminiKey)
	assert.Equal(t, "gemini api key is missing, set GENERATIVE_AI_KEY", errMissingGeminiKey.Error())
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.AIConfig{Provider: "openai"})
	assert.Error(t, err)
}

func TestInstrumentedRecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}

	ok := Instrument(stubGenerator{text: "fine"}, rec)
	text, err := ok.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "fine", text)

	failing := Instrument(stubGenerator{err: errors.New("boom")}, rec)
	_, err = failing.Generate(context.Background(), "prompt")
	require.EqualError(t, err, "boom")

	require.Len(t, rec.calls, 2)
	assert.Equal(t, "stub", rec.calls[0].provider)
	assert.NoError(t, rec.calls[0].err)
	assert.Error(t, rec.calls[1].err)
}
