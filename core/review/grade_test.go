package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core/catalog"
)

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		name    string
		scores  []RubricScore
		want    int
		wantErr error
	}{
		{
			name: "mixed rubric",
			scores: []RubricScore{
				{Category: "A", Weight: 30, Score: 4, MaxScore: 5},
				{Category: "B", Weight: 70, Score: 3, MaxScore: 5},
			},
			want: 66,
		},
		{
			name: "default rubric",
			scores: []RubricScore{
				{Category: "Code Quality", Weight: 25, Score: 3, MaxScore: 5},
				{Category: "Technical Correctness", Weight: 30, Score: 4, MaxScore: 5},
				{Category: "Documentation", Weight: 20, Score: 2, MaxScore: 5},
				{Category: "Best Practices", Weight: 25, Score: 3, MaxScore: 5},
			},
			want: 62,
		},
		{
			name:   "all top scores",
			scores: []RubricScore{{Category: "A", Weight: 1, Score: 5, MaxScore: 5}, {Category: "B", Weight: 3, Score: 10, MaxScore: 10}},
			want:   100,
		},
		{name: "all zero", scores: []RubricScore{{Category: "A", Weight: 10, Score: 0, MaxScore: 5}}, want: 0},
		{name: "rounds half up", scores: []RubricScore{{Category: "A", Weight: 1, Score: 1, MaxScore: 8}}, want: 13},
		{name: "no category", wantErr: ErrEmptyRubric},
		{name: "zero weights", scores: []RubricScore{{Category: "A", Weight: 0, Score: 3, MaxScore: 5}}, wantErr: ErrEmptyRubric},
		{name: "zero max score", scores: []RubricScore{{Category: "A", Weight: 10, Score: 3}}, wantErr: ErrInvalidRubric},
		{name: "score above max", scores: []RubricScore{{Category: "A", Weight: 10, Score: 9, MaxScore: 5}}, wantErr: ErrInvalidRubric},
		{name: "negative score", scores: []RubricScore{{Category: "A", Weight: 10, Score: -3, MaxScore: 5}}, wantErr: ErrInvalidRubric},
		{
			name: "negative weight",
			scores: []RubricScore{
				{Category: "A", Weight: 10, Score: 5, MaxScore: 5},
				{Category: "B", Weight: -5, Score: 0, MaxScore: 5},
			},
			wantErr: ErrInvalidRubric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeGrade(tt.scores)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeGrade_monotone(t *testing.T) {
	scores := BlankRubric(nil)
	prev := -1
	for step := 0; step <= DefaultMaxScore; step++ {
		scores[1].Score = float64(step)
		got, err := ComputeGrade(scores)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
}

func TestBlankRubric(t *testing.T) {
	scores := BlankRubric(nil)
	require.Len(t, scores, 4)
	assert.Equal(t, "Technical Correctness", scores[1].Category)
	assert.Equal(t, 30.0, scores[1].Weight)
	assert.Equal(t, float64(DefaultMaxScore), scores[1].MaxScore)

	custom := BlankRubric([]catalog.RubricCategory{{Name: "Research", Weight: 100}})
	assert.Equal(t, []RubricScore{{Category: "Research", Weight: 100, MaxScore: DefaultMaxScore}}, custom)
}

func TestBand(t *testing.T) {
	assert.Equal(t, "fail", Band(69, 70, 85))
	assert.Equal(t, "pass", Band(70, 70, 85))
	assert.Equal(t, "distinction", Band(85, 70, 85))
}
