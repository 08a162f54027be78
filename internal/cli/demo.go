package cli

import "quiz-attempt-service/internal/domain"

// demoQuizzes backs the static loader and the seed command.
func demoQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:          "quiz-1",
			Title:       "Arithmetic warm-up",
			Description: "Five quick questions on the basics.",
			Active:      true,
			Questions: []domain.Question{
				{
					ID:          "q1",
					Text:        "What is 2 + 2?",
					Difficulty:  domain.DifficultyEasy,
					Explanation: "Two pairs make four.",
					Options: []domain.Option{
						{ID: "q1-o1", Text: "3"},
						{ID: "q1-o2", Text: "4", Correct: true},
						{ID: "q1-o3", Text: "5"},
					},
				},
				{
					ID:         "q2",
					Text:       "What is 7 * 8?",
					Difficulty: domain.DifficultyMedium,
					Options: []domain.Option{
						{ID: "q2-o1", Text: "54"},
						{ID: "q2-o2", Text: "56", Correct: true},
						{ID: "q2-o3", Text: "64"},
					},
				},
				{
					ID:          "q3",
					Text:        "What is 144 / 12?",
					Difficulty:  domain.DifficultyMedium,
					Explanation: "12 * 12 = 144.",
					Options: []domain.Option{
						{ID: "q3-o1", Text: "12", Correct: true},
						{ID: "q3-o2", Text: "14"},
						{ID: "q3-o3", Text: "11"},
					},
				},
				{
					ID:         "q4",
					Text:       "What is the square root of 169?",
					Difficulty: domain.DifficultyHard,
					Options: []domain.Option{
						{ID: "q4-o1", Text: "12"},
						{ID: "q4-o2", Text: "14"},
						{ID: "q4-o3", Text: "13", Correct: true},
					},
				},
				{
					ID:   "q5",
					Text: "What is 10 - 3?",
					Options: []domain.Option{
						{ID: "q5-o1", Text: "7", Correct: true},
						{ID: "q5-o2", Text: "6"},
					},
				},
			},
		},
	}
}

func demoUsers() []domain.User {
	return []domain.User{
		{ID: "student-1", DisplayName: "Alice", Role: domain.RoleStudent},
		{ID: "student-2", DisplayName: "Bob", Role: domain.RoleStudent},
		{ID: "teacher-1", DisplayName: "Carol", Role: domain.RoleTeacher},
		{ID: "admin-1", DisplayName: "Dan", Role: domain.RoleAdmin},
	}
}

func demoAssignments() map[string][]string {
	return map[string][]string{
		"student-1": {"quiz-1"},
		"student-2": {"quiz-1"},
		"teacher-1": {"quiz-1"},
	}
}
