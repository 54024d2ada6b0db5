package studygen

import (
	"encoding/json"
	"fmt"
)

// ArtifactKind identifies the type of study artifact the pipeline produces.
type ArtifactKind string

const (
	KindFlashcards ArtifactKind = "flashcards"
	KindQuiz       ArtifactKind = "quiz"
	KindSummary    ArtifactKind = "summary"
	KindNotes      ArtifactKind = "notes"
)

// Valid reports whether k is one of the supported artifact kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindFlashcards, KindQuiz, KindSummary, KindNotes:
		return true
	}
	return false
}

// SourceKind tags where a piece of source content came from.
// The pipeline never inspects source bodies; the tag travels along for the
// backend's prompt rendering.
type SourceKind string

const (
	SourceDocument        SourceKind = "document"
	SourceRecording       SourceKind = "recording"
	SourceText            SourceKind = "text"
	SourceVideoTranscript SourceKind = "video-transcript"
)

// SourceContentRef points at one externally-managed unit of source content.
type SourceContentRef struct {
	Id   string     `json:"id"`
	Kind SourceKind `json:"kind"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Parameters is the kind-specific parameter set sent with a submission.
// Use the typed param structs below to build one.
type Parameters map[string]interface{}

type FlashcardParams struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
}

func (p FlashcardParams) Parameters() Parameters {
	return Parameters{
		"difficulty": string(p.Difficulty),
		"count":      p.Count,
	}
}

type QuizParams struct {
	QuestionCount int        `json:"question_count"`
	QuestionTypes []string   `json:"question_types"`
	Difficulty    Difficulty `json:"difficulty"`
}

func (p QuizParams) Parameters() Parameters {
	return Parameters{
		"question_count": p.QuestionCount,
		"question_types": p.QuestionTypes,
		"difficulty":     string(p.Difficulty),
	}
}

type NotesParams struct {
	Style string `json:"style"`
}

func (p NotesParams) Parameters() Parameters {
	return Parameters{
		"style": p.Style,
	}
}

// --- Artifact payloads ---

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QuizQuestion struct {
	Question string   `json:"question"`
	Type     string   `json:"type"` // "multiple_choice" | "true_false" | "short_answer"
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer"`
}

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type Summary struct {
	Text      string   `json:"text"`
	KeyPoints []string `json:"key_points,omitempty"`
}

type Notes struct {
	Style    string `json:"style"`
	Markdown string `json:"markdown"`
}

// Artifact is a generated study aid as delivered by the backend.
// Payload holds the kind-specific JSON; use the typed accessors to decode.
type Artifact struct {
	Kind    ArtifactKind    `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (a *Artifact) Flashcards() ([]Flashcard, error) {
	if a.Kind != KindFlashcards {
		return nil, fmt.Errorf("artifact is %s, not %s", a.Kind, KindFlashcards)
	}
	var cards []Flashcard
	if err := json.Unmarshal(a.Payload, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (a *Artifact) Quiz() (*Quiz, error) {
	if a.Kind != KindQuiz {
		return nil, fmt.Errorf("artifact is %s, not %s", a.Kind, KindQuiz)
	}
	var quiz Quiz
	if err := json.Unmarshal(a.Payload, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (a *Artifact) Summary() (*Summary, error) {
	if a.Kind != KindSummary {
		return nil, fmt.Errorf("artifact is %s, not %s", a.Kind, KindSummary)
	}
	var summary Summary
	if err := json.Unmarshal(a.Payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (a *Artifact) Notes() (*Notes, error) {
	if a.Kind != KindNotes {
		return nil, fmt.Errorf("artifact is %s, not %s", a.Kind, KindNotes)
	}
	var notes Notes
	if err := json.Unmarshal(a.Payload, &notes); err != nil {
		return nil, err
	}
	return &notes, nil
}
