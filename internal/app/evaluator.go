package app

import "peco-service/internal/domain"

// Evaluate reports whether the answer is correct for the question. Absent answers are never
// correct, and drag-match answers must reproduce the full mapping.
func Evaluate(q domain.Question, a domain.Answer) bool {
	if a.IsZero() {
		return false
	}
	switch q.Type {
	case domain.QuestionSingleChoice, domain.QuestionImageChoice:
		return q.CorrectChoice != "" && a.ChoiceID == q.CorrectChoice
	case domain.QuestionDragMatch:
		return matchesEqual(q.CorrectMatches, a.Matches)
	default:
		return false
	}
}

func matchesEqual(want, got map[string]string) bool {
	if len(want) == 0 || len(want) != len(got) {
		return false
	}
	for zone, item := range want {
		if v, ok := got[zone]; !ok || v != item {
			return false
		}
	}
	return true
}
