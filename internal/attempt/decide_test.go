package attempt

import (
	"testing"

	"github.com/abhisek/lingo/internal/progress"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		in       state
		wantKind Kind
		wantMut  progress.Mutation
		insert   bool
		complete bool
	}{
		{"first wrong", state{hearts: 5}, Missed, progress.Mutation{HeartsDelta: -1}, false, false},
		{"first wrong no hearts", state{hearts: 0}, InsufficientHearts, progress.Mutation{}, false, false},
		{"practice wrong", state{hearts: 3, practice: true}, PracticeMiss, progress.Mutation{}, false, false},
		{"practice wrong no hearts", state{hearts: 0, practice: true}, PracticeMiss, progress.Mutation{}, false, false},
		{"first correct", state{hearts: 5, correct: true}, FirstCompleted, progress.Mutation{PointsDelta: 10}, true, false},
		{"first correct no hearts", state{hearts: 0, correct: true}, InsufficientHearts, progress.Mutation{}, false, false},
		{"practice correct", state{hearts: 3, practice: true, correct: true}, PracticeCompleted, progress.Mutation{HeartsDelta: 1, PointsDelta: 10}, false, true},
		{"practice correct no hearts", state{hearts: 0, practice: true, correct: true}, PracticeCompleted, progress.Mutation{HeartsDelta: 1, PointsDelta: 10}, false, true},
		{"exempt wrong", state{hearts: 2, exempt: true}, Missed, progress.Mutation{}, false, false},
		{"exempt correct no hearts", state{hearts: 0, correct: true, exempt: true}, FirstCompleted, progress.Mutation{PointsDelta: 10}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(tt.in)
			assert.Equal(t, tt.wantKind, d.kind)
			assert.Equal(t, tt.wantMut, d.mutation)
			assert.Equal(t, tt.insert, d.insertRecord)
			assert.Equal(t, tt.complete, d.completeRecord)
		})
	}
}
