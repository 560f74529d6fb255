// Package quiz generates, issues, and grades the disaster-preparedness quiz.
package quiz

import "errors"

// ErrNoActiveQuiz means grading was requested with no issued quiz pending
// for the user. User-correctable: request a new quiz.
var ErrNoActiveQuiz = errors.New("no active quiz for user")

// noAnswer is the sentinel for a missing submitted answer. It never equals
// a valid answer key.
const noAnswer = "No answer"

// Question is one multiple-choice question. Answer is a single letter
// ("A".."D") indexing into the four options.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// IssuedQuestion is the client-facing view with the answer key withheld.
type IssuedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Issued strips answer keys for transport to the client.
func Issued(questions []Question) []IssuedQuestion {
	issued := make([]IssuedQuestion, len(questions))
	for i, q := range questions {
		issued[i] = IssuedQuestion{
			Question: q.Question,
			Options:  q.Options,
		}
	}
	return issued
}

// ReviewEntry is the per-question breakdown returned after grading.
type ReviewEntry struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Score          int           `json:"score"`
	TotalQuestions int           `json:"totalQuestions"`
	PointsEarned   int           `json:"pointsEarned"`
	Review         []ReviewEntry `json:"review"`
}
