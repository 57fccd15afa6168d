package app

import (
	"fmt"
	"math"

	"peco-service/internal/domain"
)

const streakMasterThreshold = 3

// ComputeResult derives the outcome of a finished session. Every recorded answer is evaluated
// again so the running point total (with its streak bonus) never leaks into the result.
func ComputeResult(state domain.SessionState, quiz domain.Quiz) domain.Result {
	total := len(quiz.Questions)
	correct := 0
	points := 0
	for _, q := range quiz.Questions {
		a, ok := state.Answers[q.ID]
		if !ok || !Evaluate(q, a) {
			continue
		}
		correct++
		points += questionPoints(q)
	}

	spent := 0
	if !state.FinishedAt.IsZero() && state.FinishedAt.After(state.StartedAt) {
		spent = int(state.FinishedAt.Sub(state.StartedAt).Seconds())
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}

	badges := []domain.Badge{}
	if total > 0 && correct == total {
		badges = append(badges, domain.Badge{
			Name:        "Perfect Score",
			Description: "Answered all questions correctly!",
			Icon:        "Crown",
		})
	}
	if state.BestStreak >= streakMasterThreshold {
		badges = append(badges, domain.Badge{
			Name:        "Streak Master",
			Description: fmt.Sprintf("%d questions in a row!", state.BestStreak),
			Icon:        "Zap",
		})
	}

	return domain.Result{
		SessionID:      state.SessionID,
		QuizID:         quiz.ID,
		Score:          correct,
		TotalQuestions: total,
		PointsEarned:   points,
		TimeSpent:      spent,
		BestStreak:     state.BestStreak,
		Percentage:     percentage,
		Message:        performanceMessage(percentage),
		Badges:         badges,
	}
}

func performanceMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding! You're an eco-champion!"
	case percentage >= 80:
		return "Excellent work! You're doing great!"
	case percentage >= 70:
		return "Good job! Keep learning and growing!"
	case percentage >= 60:
		return "Nice effort! Practice makes perfect!"
	default:
		return "Keep trying! Every attempt makes you stronger!"
	}
}
