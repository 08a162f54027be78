package attempt

import (
	"math"

	"github.com/samber/lo"

	"quiz-attempt-service/internal/domain"
)

// Result is the outcome of scoring a response set.
type Result struct {
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
}

// Score counts correct responses. Both the persisted raw score and the displayed
// percentage come from this one value.
func Score(responses []domain.Response) Result {
	correct := lo.CountBy(responses, func(r domain.Response) bool { return r.IsCorrect })
	return Result{
		CorrectAnswers: correct,
		TotalQuestions: len(responses),
		Percentage:     Percentage(correct, len(responses)),
	}
}

// Percentage rounds correct/total to one decimal place. A zero total scores 0.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)*1000/float64(total)) / 10
}
