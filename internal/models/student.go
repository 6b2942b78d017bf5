package models

import "time"

// Student represents a learner registered by an administrator. The matric
// number is the external key every result row hangs off.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Matric       string    `db:"matric" json:"matric"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentProfile is the public projection returned alongside results.
type StudentProfile struct {
	Name   string `json:"name"`
	Matric string `json:"matric"`
	Email  string `json:"email"`
}

// Profile strips credential material from a student record.
func (s *Student) Profile() StudentProfile {
	return StudentProfile{Name: s.Name, Matric: s.Matric, Email: s.Email}
}
