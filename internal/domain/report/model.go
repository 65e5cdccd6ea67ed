package report

import (
	"errors"
	"strings"
	"time"
)

// Limits for coach-entered review fields.
const (
	MinScore       = 0
	MaxScore       = 100
	MaxNotesLength = 2000
)

// Domain errors
var (
	ErrMissingAthlete = errors.New("review must be associated with an athlete")
	ErrScoreRange     = errors.New("score must be between 0 and 100")
	ErrNotesTooLong   = errors.New("notes cannot exceed 2000 characters")
	ErrMissingAuthor  = errors.New("review must record the reviewing coach")
)

// Review is the coach-entered part of a performance report. The athlete
// record itself is not stored with it; reports are regenerated from the
// current roster snapshot.
type Review struct {
	ID          string    `json:"id"`
	AthleteID   string    `json:"athleteId"`
	AuthorID    string    `json:"authorId"`
	Score       int       `json:"score"`
	Notes       string    `json:"notes"`
	HTML        string    `json:"html"`
	EmailedTo   string    `json:"emailedTo,omitempty"`
	MessageID   string    `json:"messageId,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Validate checks the review fields.
// PRE: Review struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Score within [0, 100]; notes bounded
func (r *Review) Validate() error {
	if strings.TrimSpace(r.AthleteID) == "" {
		return ErrMissingAthlete
	}
	if strings.TrimSpace(r.AuthorID) == "" {
		return ErrMissingAuthor
	}
	if r.Score < MinScore || r.Score > MaxScore {
		return ErrScoreRange
	}
	if len(r.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Band returns a short label for the score.
func (r *Review) Band() string {
	switch {
	case r.Score >= 85:
		return "Excellent"
	case r.Score >= 70:
		return "Strong"
	case r.Score >= 50:
		return "Developing"
	default:
		return "Needs focus"
	}
}
