package report

import (
	"strings"
	"testing"
)

// TestReview_Validate tests validation of Review.
func TestReview_Validate(t *testing.T) {
	tests := []struct {
		name    string
		review  Review
		wantErr error
	}{
		{"valid", Review{AthleteID: "a1", AuthorID: "c1", Score: 72, Notes: "solid"}, nil},
		{"zero score", Review{AthleteID: "a1", AuthorID: "c1", Score: 0}, nil},
		{"missing athlete", Review{AuthorID: "c1", Score: 10}, ErrMissingAthlete},
		{"missing author", Review{AthleteID: "a1", Score: 10}, ErrMissingAuthor},
		{"score too high", Review{AthleteID: "a1", AuthorID: "c1", Score: 101}, ErrScoreRange},
		{"negative score", Review{AthleteID: "a1", AuthorID: "c1", Score: -1}, ErrScoreRange},
		{"notes too long", Review{AthleteID: "a1", AuthorID: "c1", Notes: strings.Repeat("x", MaxNotesLength+1)}, ErrNotesTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.review.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestReview_Band verifies score bands.
func TestReview_Band(t *testing.T) {
	tests := map[int]string{100: "Excellent", 85: "Excellent", 70: "Strong", 50: "Developing", 49: "Needs focus"}
	for score, want := range tests {
		r := Review{Score: score}
		if got := r.Band(); got != want {
			t.Errorf("Band(%d) = %q, want %q", score, got, want)
		}
	}
}
