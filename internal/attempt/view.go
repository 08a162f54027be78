package attempt

import "quiz-attempt-service/internal/domain"

// OptionView is an option as shown while the attempt runs. It never carries correctness.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Difficulty domain.Difficulty `json:"difficulty,omitempty"`
	Options    []OptionView      `json:"options"`
}

// View is the client-facing projection of a session.
type View struct {
	ID             string        `json:"id"`
	QuizID         string        `json:"quizId"`
	QuizTitle      string        `json:"quizTitle,omitempty"`
	State          State         `json:"state"`
	CurrentIndex   int           `json:"currentIndex"`
	TotalQuestions int           `json:"totalQuestions"`
	Answered       int           `json:"answered"`
	ActiveOptionID string        `json:"activeOptionId,omitempty"`
	Question       *QuestionView `json:"question,omitempty"`
}

// ReviewItem explains one question after the attempt completed.
type ReviewItem struct {
	QuestionID       string `json:"questionId"`
	Text             string `json:"text"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	CorrectOptionID  string `json:"correctOptionId,omitempty"`
	IsCorrect        bool   `json:"isCorrect"`
	Explanation      string `json:"explanation,omitempty"`
}

func (s *Session) View() View {
	v := View{
		ID:             s.ID,
		QuizID:         s.QuizID,
		QuizTitle:      s.QuizTitle,
		State:          s.State,
		CurrentIndex:   s.CurrentIndex,
		TotalQuestions: len(s.Questions),
		Answered:       len(s.Responses),
		ActiveOptionID: s.ActiveOptionID,
	}

	question, ok := s.Current()
	if !ok {
		return v
	}
	qv := &QuestionView{
		ID:         question.ID,
		Text:       question.Text,
		Difficulty: question.Difficulty,
		Options:    make([]OptionView, 0, len(question.Options)),
	}
	for _, id := range s.OptionOrder {
		if opt, ok := question.Option(id); ok {
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
	}
	v.Question = qv
	return v
}

// Review reveals correct answers. It returns nil until the attempt is complete.
func (s *Session) Review() []ReviewItem {
	if s.State != StateComplete {
		return nil
	}
	selected := make(map[string]domain.Response, len(s.Responses))
	for _, r := range s.Responses {
		selected[r.QuestionID] = r
	}

	items := make([]ReviewItem, 0, len(s.Questions))
	for _, q := range s.Questions {
		item := ReviewItem{QuestionID: q.ID, Text: q.Text, Explanation: q.Explanation}
		if correct, ok := q.CorrectOption(); ok {
			item.CorrectOptionID = correct.ID
		}
		if r, ok := selected[q.ID]; ok {
			item.SelectedOptionID = r.SelectedOptionID
			item.IsCorrect = r.IsCorrect
		}
		items = append(items, item)
	}
	return items
}
