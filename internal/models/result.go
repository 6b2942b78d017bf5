package models

import "time"

// Result represents a single examination result for a student.
type Result struct {
	ID        string    `db:"id" json:"id"`
	Matric    string    `db:"matric" json:"matric"`
	Subject   string    `db:"subject" json:"subject"`
	Score     float64   `db:"score" json:"score"`
	Grade     string    `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ValidScore reports whether a score falls within the accepted range.
func ValidScore(score float64) bool {
	return score >= 0 && score <= 100
}

// GradeForScore maps a score in [0,100] onto the institutional grade bands.
// Callers must validate the score first; out-of-range input never reaches
// this function through the API.
func GradeForScore(score float64) string {
	switch {
	case score >= 70:
		return "A"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	case score >= 45:
		return "D"
	case score >= 40:
		return "E"
	default:
		return "F"
	}
}
