package generator

import (
	"fmt"
	"strings"

	"ai-studygen-be/pkg/studygen"
)

const sourceCharLimit = 24000

func buildPrompt(kind studygen.ArtifactKind, sources []Source, params studygen.Parameters) (string, error) {
	var sb strings.Builder

	switch kind {
	case studygen.KindFlashcards:
		count := intParam(params, "count", 10)
		difficulty := stringParam(params, "difficulty", string(studygen.DifficultyMedium))
		sb.WriteString(fmt.Sprintf(
			"You are a study assistant. Create exactly %d flashcards at %s difficulty from the material below.\n"+
				"Respond with ONLY a JSON array, no prose. Each element: {\"front\": \"question or term\", \"back\": \"answer or definition\"}.\n",
			count, difficulty))
	case studygen.KindQuiz:
		count := intParam(params, "question_count", 10)
		difficulty := stringParam(params, "difficulty", string(studygen.DifficultyMedium))
		types := stringSliceParam(params, "question_types")
		if len(types) == 0 {
			types = []string{"multiple_choice"}
		}
		sb.WriteString(fmt.Sprintf(
			"You are a study assistant. Create a quiz with exactly %d questions at %s difficulty from the material below.\n"+
				"Use only these question types: %s.\n"+
				"Respond with ONLY a JSON object, no prose: {\"questions\": [{\"question\": ..., \"type\": ..., \"options\": [...], \"answer\": ...}]}.\n"+
				"Omit \"options\" for non multiple_choice questions.\n",
			count, difficulty, strings.Join(types, ", ")))
	case studygen.KindSummary:
		sb.WriteString(
			"You are a study assistant. Summarize the material below for a student reviewing before an exam.\n" +
				"Respond with ONLY a JSON object, no prose: {\"text\": \"the summary\", \"key_points\": [\"...\"]}.\n")
	case studygen.KindNotes:
		style := stringParam(params, "style", "outline")
		sb.WriteString(fmt.Sprintf(
			"You are a study assistant. Rewrite the material below as %s-style study notes in Markdown.\n"+
				"Respond with ONLY a JSON object, no prose: {\"style\": %q, \"markdown\": \"the notes\"}.\n",
			style, style))
	default:
		return "", fmt.Errorf("unknown artifact kind: %s", kind)
	}

	sb.WriteString("\n--- MATERIAL ---\n")
	remaining := sourceCharLimit
	for _, src := range sources {
		if remaining <= 0 {
			break
		}
		body := src.Body
		if len(body) > remaining {
			body = body[:remaining]
		}
		remaining -= len(body)
		sb.WriteString(fmt.Sprintf("\n## %s (%s)\n%s\n", src.Title, src.Kind, body))
	}

	return sb.String(), nil
}

func intParam(params studygen.Parameters, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64
		return int(v)
	}
	return fallback
}

func stringParam(params studygen.Parameters, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func stringSliceParam(params studygen.Parameters, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
