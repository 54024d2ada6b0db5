package studygen

import (
	"strings"
	"testing"
)

func TestFingerprintStableAcrossSourceOrder(t *testing.T) {
	tests := []struct {
		name   string
		kind   ArtifactKind
		params Parameters
	}{
		{
			name:   "summary without params",
			kind:   KindSummary,
			params: nil,
		},
		{
			name:   "flashcards with params",
			kind:   KindFlashcards,
			params: FlashcardParams{Difficulty: DifficultyMedium, Count: 10}.Parameters(),
		},
		{
			name:   "notes with style",
			kind:   KindNotes,
			params: NotesParams{Style: "outline"}.Parameters(),
		},
	}

	permutations := [][]string{
		{"doc-1", "doc-2", "rec-3"},
		{"rec-3", "doc-1", "doc-2"},
		{"doc-2", "rec-3", "doc-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := Fingerprint(tt.kind, permutations[0], tt.params)
			for _, ids := range permutations[1:] {
				if got := Fingerprint(tt.kind, ids, tt.params); got != want {
					t.Errorf("Fingerprint(%v) = %q, want %q", ids, got, want)
				}
			}
		})
	}
}

func TestFingerprintDiscrimination(t *testing.T) {
	ids := []string{"doc-1", "doc-2"}

	if Fingerprint(KindSummary, ids, nil) == Fingerprint(KindNotes, ids, nil) {
		t.Error("different kinds produced the same fingerprint")
	}
	if Fingerprint(KindSummary, ids, nil) == Fingerprint(KindSummary, []string{"doc-1"}, nil) {
		t.Error("different source sets produced the same fingerprint")
	}

	outline := Fingerprint(KindNotes, ids, NotesParams{Style: "outline"}.Parameters())
	cornell := Fingerprint(KindNotes, ids, NotesParams{Style: "cornell"}.Parameters())
	if outline == cornell {
		t.Error("distinct notes styles must be distinct artifacts")
	}
}

func TestFlashcardAndQuizParamsExcludedFromKey(t *testing.T) {
	// Deliberate relaxation: any cached deck/quiz for the kind+sources is
	// reused regardless of count or difficulty.
	ids := []string{"doc-1"}

	easy := Fingerprint(KindFlashcards, ids, FlashcardParams{Difficulty: DifficultyEasy, Count: 5}.Parameters())
	hard := Fingerprint(KindFlashcards, ids, FlashcardParams{Difficulty: DifficultyHard, Count: 20}.Parameters())
	if easy != hard {
		t.Errorf("flashcard params changed the lookup key: %q vs %q", easy, hard)
	}

	quizA := Fingerprint(KindQuiz, ids, QuizParams{QuestionCount: 5, QuestionTypes: []string{"multiple_choice"}, Difficulty: DifficultyEasy}.Parameters())
	quizB := Fingerprint(KindQuiz, ids, QuizParams{QuestionCount: 15, QuestionTypes: []string{"true_false"}, Difficulty: DifficultyHard}.Parameters())
	if quizA != quizB {
		t.Errorf("quiz params changed the lookup key: %q vs %q", quizA, quizB)
	}
}

func TestQuestionTypeOrderInsensitive(t *testing.T) {
	a := normalizeParameters(Parameters{"question_types": []string{"true_false", "multiple_choice"}})
	b := normalizeParameters(Parameters{"question_types": []string{"multiple_choice", "true_false"}})
	if string(a) != string(b) {
		t.Errorf("question type order changed normalization: %s vs %s", a, b)
	}

	// Same set arriving as []interface{} after a JSON round trip.
	c := normalizeParameters(Parameters{"question_types": []interface{}{"true_false", "multiple_choice"}})
	if string(a) != string(c) {
		t.Errorf("[]interface{} set normalized differently: %s vs %s", a, c)
	}
}

func TestFingerprintPrefixMatchesAllParamVariants(t *testing.T) {
	ids := []string{"doc-1", "doc-2"}
	prefix := FingerprintPrefix(KindNotes, ids)

	for _, style := range []string{"outline", "cornell", "mindmap"} {
		fp := Fingerprint(KindNotes, ids, NotesParams{Style: style}.Parameters())
		if !strings.HasPrefix(fp, prefix) {
			t.Errorf("fingerprint %q does not start with prefix %q", fp, prefix)
		}
	}
}
