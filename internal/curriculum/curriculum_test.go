package curriculum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeTypeTitle(t *testing.T) {
	assert.Equal(t, "Select the correct meaning", Assist.Title("el hombre"))
	assert.Equal(t, "Which one is the man?", Select.Title("Which one is the man?"))
	assert.False(t, ChallengeType("MATCH").Valid())
}

func TestCorrectOption(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		wantID  int64
		wantErr bool
	}{
		{"single correct", []Option{{ID: 1}, {ID: 2, Correct: true}}, 2, false},
		{"none correct", []Option{{ID: 1}, {ID: 2}}, 0, true},
		{"two correct", []Option{{ID: 1, Correct: true}, {ID: 2, Correct: true}}, 0, true},
		{"no options", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := Challenge{ID: 5, Options: tt.options}
			opt, err := ch.CorrectOption()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrInvariant)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, opt.ID)
		})
	}
}

func TestSampleCourse(t *testing.T) {
	c := Sample()

	assert.Equal(t, int64(1), c.ID)
	require.Len(t, c.Units, 2)
	assert.Equal(t, 1, c.Units[0].Order)
	require.Len(t, c.Units[0].Lessons, 2)

	first := c.Units[0].Lessons[0]
	require.Len(t, first.Challenges, 3)
	assert.Equal(t, int64(1), first.UnitID)
	for _, ch := range first.Challenges {
		assert.Equal(t, first.ID, ch.LessonID)
		_, err := ch.CorrectOption()
		assert.NoError(t, err)
	}

	unit, lesson := c.Lesson(4)
	require.NotNil(t, lesson)
	assert.Equal(t, int64(2), unit.ID)
}

func TestParseSortsByOrder(t *testing.T) {
	doc := `{
		"id": 2, "title": "French",
		"units": [
			{"id": 20, "title": "B", "order": 2, "lessons": []},
			{"id": 10, "title": "A", "order": 1, "lessons": [
				{"id": 101, "title": "L2", "order": 2, "challenges": []},
				{"id": 100, "title": "L1", "order": 1, "challenges": [
					{"id": 1001, "type": "ASSIST", "question": "q2", "order": 2,
					 "options": [{"id": 1, "text": "a", "correct": true}]},
					{"id": 1000, "type": "SELECT", "question": "q1", "order": 1,
					 "options": [{"id": 2, "text": "b", "correct": true}, {"id": 3, "text": "c", "correct": false}]}
				]}
			]}
		]
	}`

	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, int64(10), c.Units[0].ID)
	assert.Equal(t, int64(100), c.Units[0].Lessons[0].ID)
	assert.Equal(t, int64(1000), c.Units[0].Lessons[0].Challenges[0].ID)
	assert.Equal(t, int64(10), c.Units[0].Lessons[0].UnitID)
	assert.Equal(t, int64(2), c.Units[0].CourseID)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing title", `{"id": 1, "units": []}`},
		{"bad type", `{"id": 1, "title": "x", "units": [{"id": 1, "title": "u", "order": 1, "lessons": [
			{"id": 1, "title": "l", "order": 1, "challenges": [
				{"id": 1, "type": "MATCH", "question": "q", "order": 1, "options": [{"id": 1, "text": "a", "correct": true}]}]}]}]}`},
		{"no correct option", `{"id": 1, "title": "x", "units": [{"id": 1, "title": "u", "order": 1, "lessons": [
			{"id": 1, "title": "l", "order": 1, "challenges": [
				{"id": 1, "type": "SELECT", "question": "q", "order": 1, "options": [{"id": 1, "text": "a", "correct": false}]}]}]}]}`},
		{"duplicate unit order", `{"id": 1, "title": "x", "units": [
			{"id": 1, "title": "u", "order": 1, "lessons": []},
			{"id": 2, "title": "v", "order": 1, "lessons": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.json")
	require.NoError(t, os.WriteFile(path, sampleCourse, 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", c.Title)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
