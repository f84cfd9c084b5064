package core

import (
	"context"
	"sort"
	"strings"
)

// UnitOfWork runs a group of repository calls as one atomic operation.
// Do serialises writers; when fn returns an error every change made inside it is discarded.
// View gives fn a consistent read of several collections.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FieldComparer compares items i and j on a named field; ok is false for unknown fields.
type FieldComparer func(field string, i, j int) (cmp int, ok bool)

// SortByOrderings sorts the slice in place with orderings applied left to right.
// Unknown fields are ignored; fallback breaks the remaining ties.
func SortByOrderings(slice interface{}, orderings []DBOrdering, compare FieldComparer, fallback func(i, j int) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		for _, ord := range orderings {
			c, ok := compare(strings.TrimSpace(ord.Field), i, j)
			if !ok || c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return fallback(i, j)
	})
}
