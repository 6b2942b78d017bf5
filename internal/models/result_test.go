package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForScore(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{100, "A"},
		{85, "A"},
		{70, "A"},
		{69.9, "B"},
		{60, "B"},
		{59.9, "C"},
		{50, "C"},
		{45, "D"},
		{44.9, "E"},
		{40, "E"},
		{39.9, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, GradeForScore(tc.score), "score %g", tc.score)
	}
}

func TestValidScore(t *testing.T) {
	assert.True(t, ValidScore(0))
	assert.True(t, ValidScore(100))
	assert.True(t, ValidScore(55.5))
	assert.False(t, ValidScore(-0.1))
	assert.False(t, ValidScore(100.1))
	assert.False(t, ValidScore(150))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
