package review

import (
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/catalog"
)

// DefaultMaxScore is the top of the score scale for every rubric category.
const DefaultMaxScore = 5

var (
	ErrEmptyRubric   = errors.New("rubric has no weighted category")
	ErrInvalidRubric = errors.New("rubric category has a negative weight or a score outside [0, max score]")

	defaultRubric = []catalog.RubricCategory{
		{Name: "Code Quality", Weight: 25},
		{Name: "Technical Correctness", Weight: 30},
		{Name: "Documentation", Weight: 20},
		{Name: "Best Practices", Weight: 25},
	}
)

// ComputeGrade returns the weighted percentage of the rubric:
// round(Σ(score/max × weight) / Σweight × 100).
func ComputeGrade(scores []RubricScore) (int, error) {
	var total, weights float64
	for _, s := range scores {
		if s.MaxScore <= 0 || s.Weight < 0 || s.Score < 0 || s.Score > s.MaxScore {
			return 0, ErrInvalidRubric
		}
		total += s.Score / s.MaxScore * s.Weight
		weights += s.Weight
	}
	if weights <= 0 {
		return 0, ErrEmptyRubric
	}
	return core.Round(total / weights * 100), nil
}

// BlankRubric returns unscored rubric lines for the categories, or for the default
// categories when none are given.
func BlankRubric(categories []catalog.RubricCategory) []RubricScore {
	if len(categories) == 0 {
		categories = defaultRubric
	}
	scores := make([]RubricScore, 0, len(categories))
	for _, c := range categories {
		scores = append(scores, RubricScore{Category: c.Name, Weight: c.Weight, MaxScore: DefaultMaxScore})
	}
	return scores
}

// Band names where a grade sits relative to the pass and distinction marks.
func Band(grade, passMark, distinctionMark int) string {
	switch {
	case grade >= distinctionMark:
		return "distinction"
	case grade >= passMark:
		return "pass"
	default:
		return "fail"
	}
}
