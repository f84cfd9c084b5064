package review

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/trezcool/getskill/core/user"
)

// QueueItem is an open review with its SLA standing at the time the queue was built.
type QueueItem struct {
	Review
	Overdue   bool `json:"overdue"`
	HoursLeft *int `json:"hours_left,omitempty"`
}

// SLAStanding returns whether the deadline has passed and the hours left, rounded up.
// Reviews without a deadline are never overdue.
func SLAStanding(deadline *time.Time, now time.Time) (overdue bool, hoursLeft *int) {
	if deadline == nil {
		return false, nil
	}
	left := deadline.Sub(now)
	hours := int(math.Ceil(left.Hours()))
	return left < 0, &hours
}

// SortBySLA orders reviews by SLA deadline, soonest first, reviews without a deadline last.
func SortBySLA(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		di, dj := reviews[i].SLADeadline, reviews[j].SLADeadline
		switch {
		case di == nil && dj == nil:
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}
	})
}

func viewerFilter(viewer user.User, statuses ...string) ReviewFilter {
	filter := ReviewFilter{Statuses: statuses}
	if !viewer.IsAdmin() {
		filter.ReviewerID = viewer.ID
	}
	return filter
}

// Queue lists the open reviews assigned to the viewer (every open review for admins),
// most urgent first.
func (svc *service) Queue(ctx context.Context, viewer user.User) ([]QueueItem, error) {
	reviews, err := svc.repo.QueryReviews(ctx, viewerFilter(viewer, StatusPending, StatusInProgress))
	if err != nil {
		return nil, err
	}
	SortBySLA(reviews)

	now := nowFunc().UTC()
	items := make([]QueueItem, 0, len(reviews))
	for _, r := range reviews {
		overdue, hoursLeft := SLAStanding(r.SLADeadline, now)
		items = append(items, QueueItem{Review: r, Overdue: overdue, HoursLeft: hoursLeft})
	}
	return items, nil
}

// Completed lists the decided reviews visible to the viewer, latest first.
func (svc *service) Completed(ctx context.Context, viewer user.User) ([]Review, error) {
	reviews, err := svc.repo.QueryReviews(ctx, viewerFilter(viewer, StatusCompleted))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		ci, cj := reviews[i].CompletedAt, reviews[j].CompletedAt
		if ci == nil || cj == nil {
			return cj == nil && ci != nil
		}
		return ci.After(*cj)
	})
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, nil
}
