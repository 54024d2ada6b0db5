package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-studygen-be/pkg/llm"
	"ai-studygen-be/pkg/studygen"
)

// Source is one unit of study material fed into a generation run.
type Source struct {
	Title string
	Kind  studygen.SourceKind
	Body  string
}

// Generator turns source material into a kind-specific artifact payload.
type Generator interface {
	Generate(ctx context.Context, kind studygen.ArtifactKind, sources []Source, params studygen.Parameters) (json.RawMessage, error)
}

type llmGenerator struct {
	provider llm.LLMProvider
}

var _ Generator = &llmGenerator{}

func NewGenerator(provider llm.LLMProvider) Generator {
	return &llmGenerator{provider: provider}
}

func (g *llmGenerator) Generate(ctx context.Context, kind studygen.ArtifactKind, sources []Source, params studygen.Parameters) (json.RawMessage, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to generate from")
	}

	// 1. Build the prompt for this artifact kind
	prompt, err := buildPrompt(kind, sources, params)
	if err != nil {
		return nil, err
	}

	// 2. Ask the model, constrained to JSON where the provider supports it
	raw, err := g.provider.Generate(ctx, prompt, llm.WithJSONOutput(), llm.WithTemperature(0.4))
	if err != nil {
		return nil, fmt.Errorf("llm generate: %w", err)
	}

	// 3. Extract and validate the payload
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse llm response: %w", err)
	}

	if err := validatePayload(kind, payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", kind, err)
	}

	return payload, nil
}

// validatePayload checks that the model actually produced the shape the
// artifact accessors expect, so a malformed response fails the job instead
// of poisoning the cache.
func validatePayload(kind studygen.ArtifactKind, payload json.RawMessage) error {
	switch kind {
	case studygen.KindFlashcards:
		var cards []studygen.Flashcard
		if err := json.Unmarshal(payload, &cards); err != nil {
			return err
		}
		if len(cards) == 0 {
			return fmt.Errorf("empty flashcard set")
		}
		for i, c := range cards {
			if c.Front == "" || c.Back == "" {
				return fmt.Errorf("flashcard %d has an empty side", i)
			}
		}
	case studygen.KindQuiz:
		var quiz studygen.Quiz
		if err := json.Unmarshal(payload, &quiz); err != nil {
			return err
		}
		if len(quiz.Questions) == 0 {
			return fmt.Errorf("quiz has no questions")
		}
		for i, q := range quiz.Questions {
			if q.Question == "" || q.Answer == "" {
				return fmt.Errorf("question %d is incomplete", i)
			}
		}
	case studygen.KindSummary:
		var summary studygen.Summary
		if err := json.Unmarshal(payload, &summary); err != nil {
			return err
		}
		if summary.Text == "" {
			return fmt.Errorf("summary text is empty")
		}
	case studygen.KindNotes:
		var notes studygen.Notes
		if err := json.Unmarshal(payload, &notes); err != nil {
			return err
		}
		if notes.Markdown == "" {
			return fmt.Errorf("notes body is empty")
		}
	default:
		return fmt.Errorf("unknown artifact kind: %s", kind)
	}
	return nil
}
