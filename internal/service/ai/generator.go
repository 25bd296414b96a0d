package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/budgetly/budgetly/backend/internal/config"
)

// ErrEmptyResponse is returned when the model produced no candidates at all.
var ErrEmptyResponse = errors.New("model returned no content")

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Recorder receives one observation per Generate call.
type Recorder interface {
	RecordGenerate(provider string, err error, duration time.Duration)
}

// NewGenerator builds the generator selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderArk:
		g, err := NewArkGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

// Instrumented wraps a Generator with timing, logging and metrics.
type Instrumented struct {
	next     Generator
	recorder Recorder
}

// Instrument returns g wrapped so each call is recorded. A nil recorder only logs.
func Instrument(g Generator, recorder Recorder) *Instrumented {
	return &Instrumented{next: g, recorder: recorder}
}

func (i *Instrumented) Provider() string {
	return i.next.Provider()
}

func (i *Instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := i.next.Generate(ctx, prompt)
	elapsed := time.Since(start)

	if i.recorder != nil {
		i.recorder.RecordGenerate(i.next.Provider(), err, elapsed)
	}
	if err != nil {
		log.Printf("[ai] %s generation failed after %s: %v", i.next.Provider(), elapsed.Round(time.Millisecond), err)
		return "", err
	}

	log.Printf("[ai] %s generated response, prompt=%d chars, response=%d chars, took=%s",
		i.next.Provider(), len(prompt), len(text), elapsed.Round(time.Millisecond))
	return text, nil
}
