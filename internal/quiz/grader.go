package quiz

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/internal/storage/models"
	"github.com/bousai-navi/backend/pkg/logger"
)

// ResultStore is the persistence surface grading writes to.
type ResultStore interface {
	InsertQuizResult(ctx context.Context, result *models.QuizResult) error
	AddPoints(ctx context.Context, userID int64, delta int) error
}

type Grader struct {
	store             ResultStore
	sessions          *SessionStore
	pointsPerQuestion int
}

func NewGrader(store ResultStore, sessions *SessionStore, pointsPerQuestion int) *Grader {
	if pointsPerQuestion <= 0 {
		pointsPerQuestion = 10
	}
	return &Grader{
		store:             store,
		sessions:          sessions,
		pointsPerQuestion: pointsPerQuestion,
	}
}

// Grade consumes the user's pending quiz and scores the submitted answers,
// indexed by question position. Missing answers count as unanswered and are
// never correct. The session entry is removed before scoring, so a second
// submission without a re-issue fails with ErrNoActiveQuiz.
func (g *Grader) Grade(ctx context.Context, userID int64, answers []string) (*GradeResult, error) {
	questions, ok := g.sessions.GetAndRemove(userID)
	if !ok {
		return nil, ErrNoActiveQuiz
	}

	score := 0
	review := make([]ReviewEntry, len(questions))

	for i, question := range questions {
		userKey := noAnswer
		if i < len(answers) && answers[i] != "" {
			userKey = answers[i]
		}

		isCorrect := userKey == question.Answer
		if isCorrect {
			score++
		}

		review[i] = ReviewEntry{
			Question:      question.Question,
			UserAnswer:    optionText(question.Options, userKey),
			CorrectAnswer: optionText(question.Options, question.Answer),
			IsCorrect:     isCorrect,
		}
	}

	pointsEarned := score * g.pointsPerQuestion

	result := &models.QuizResult{
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(questions),
	}
	if err := g.store.InsertQuizResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist quiz result: %w", err)
	}
	if err := g.store.AddPoints(ctx, userID, pointsEarned); err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	metrics.QuizGraded.Observe(float64(score))
	logger.Info("Quiz graded",
		zap.Int64("user_id", userID),
		zap.Int("score", score),
		zap.Int("total", len(questions)),
		zap.Int("points_earned", pointsEarned),
	)

	return &GradeResult{
		Score:          score,
		TotalQuestions: len(questions),
		PointsEarned:   pointsEarned,
		Review:         review,
	}, nil
}

// optionText resolves an answer key ("A".."D") to its option text, falling
// back to the raw key when it does not index into the options.
func optionText(options []string, key string) string {
	if len(key) != 1 {
		return key
	}
	idx := int(key[0]) - 'A'
	if idx < 0 || idx >= len(options) {
		return key
	}
	return options[idx]
}
