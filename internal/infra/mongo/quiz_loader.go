// Package mongo loads quiz content stored as one document per quiz.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quiz-attempt-service/internal/domain"
)

type optionDoc struct {
	OptionID  string `bson:"optionId"`
	Text      string `bson:"text"`
	IsCorrect bool   `bson:"isCorrect"`
}

type questionDoc struct {
	QuestionID  string      `bson:"questionId"`
	Text        string      `bson:"text"`
	Difficulty  string      `bson:"difficulty,omitempty"`
	Explanation string      `bson:"explanation,omitempty"`
	Options     []optionDoc `bson:"options"`
}

type quizDoc struct {
	QuizID      string        `bson:"quizId"`
	Title       string        `bson:"title"`
	Description string        `bson:"description,omitempty"`
	Active      bool          `bson:"active"`
	Version     int64         `bson:"version"`
	Questions   []questionDoc `bson:"questions"`
}

type QuizLoader struct {
	collection *mongo.Collection
}

func NewQuizLoader(collection *mongo.Collection) *QuizLoader {
	return &QuizLoader{collection: collection}
}

// Connect opens a client and returns the loader for database.collection.
func Connect(ctx context.Context, uri, database, collection string) (*QuizLoader, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	return NewQuizLoader(client.Database(database).Collection(collection)), client, nil
}

// LoadQuiz returns the latest version of the quiz document.
func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	findOpts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	res := l.collection.FindOne(ctx, bson.M{"quizId": quizID}, findOpts)
	if errors.Is(res.Err(), mongo.ErrNoDocuments) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if res.Err() != nil {
		return domain.Quiz{}, fmt.Errorf("find quiz: %w", res.Err())
	}

	var doc quizDoc
	if err := res.Decode(&doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz: %w", err)
	}
	return doc.toDomain(), nil
}

func (d quizDoc) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:          d.QuizID,
		Title:       d.Title,
		Description: d.Description,
		Active:      d.Active,
		Questions:   make([]domain.Question, 0, len(d.Questions)),
	}
	for _, q := range d.Questions {
		question := domain.Question{
			ID:          q.QuestionID,
			Text:        q.Text,
			Difficulty:  domain.Difficulty(q.Difficulty),
			Explanation: q.Explanation,
			Options:     make([]domain.Option, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, domain.Option{ID: o.OptionID, Text: o.Text, Correct: o.IsCorrect})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}
