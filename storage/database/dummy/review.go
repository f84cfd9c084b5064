package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/review"
)

type reviewRepository struct {
	submissions  *submissionTable
	deliverables *deliverableTable
	reviews      *reviewTable
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{
		submissions:  db.submission,
		deliverables: db.deliverable,
		reviews:      db.review,
	}
}

// Submissions

func (repo *reviewRepository) submissionIndex(id string) int {
	for i, s := range repo.submissions.rows {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (repo *reviewRepository) CreateSubmission(_ context.Context, s review.Submission) (review.Submission, error) {
	repo.submissions.Lock()
	defer repo.submissions.Unlock()

	if repo.submissionIndex(s.ID) >= 0 {
		return review.Submission{}, errors.Errorf("submission %s already exists", s.ID)
	}
	repo.submissions.rows = append(repo.submissions.rows, s)
	return s, nil
}

func (repo *reviewRepository) GetSubmission(_ context.Context, id string) (review.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	if i := repo.submissionIndex(id); i >= 0 {
		return repo.submissions.rows[i], nil
	}
	return review.Submission{}, review.ErrSubmissionNotFound
}

func (repo *reviewRepository) UpdateSubmission(_ context.Context, s review.Submission) (review.Submission, error) {
	repo.submissions.Lock()
	defer repo.submissions.Unlock()

	i := repo.submissionIndex(s.ID)
	if i < 0 {
		return review.Submission{}, review.ErrSubmissionNotFound
	}
	repo.submissions.rows[i] = s
	return s, nil
}

func (repo *reviewRepository) QuerySubmissions(_ context.Context, filter review.SubmissionFilter, orderings ...core.DBOrdering) ([]review.Submission, error) {
	repo.submissions.RLock()
	defer repo.submissions.RUnlock()

	subs := make([]review.Submission, 0)
	for _, s := range repo.submissions.rows {
		if filter.Match(s) {
			subs = append(subs, s)
		}
	}

	core.SortByOrderings(subs, orderings, func(field string, i, j int) (int, bool) {
		switch field {
		case "created_at":
			return compareTimes(subs[i].CreatedAt, subs[j].CreatedAt), true
		case "updated_at":
			return compareTimes(subs[i].UpdatedAt, subs[j].UpdatedAt), true
		case "submitted_at":
			return compareTimePtrs(subs[i].SubmittedAt, subs[j].SubmittedAt), true
		}
		return 0, false
	}, noReorder)
	return subs, nil
}

// Deliverables

func (repo *reviewRepository) deliverableIndex(id string) int {
	for i, d := range repo.deliverables.rows {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (repo *reviewRepository) GetDeliverable(_ context.Context, id string) (review.Deliverable, error) {
	repo.deliverables.RLock()
	defer repo.deliverables.RUnlock()

	if i := repo.deliverableIndex(id); i >= 0 {
		return repo.deliverables.rows[i], nil
	}
	return review.Deliverable{}, review.ErrDeliverableNotFound
}

func (repo *reviewRepository) UpdateDeliverable(_ context.Context, d review.Deliverable) (review.Deliverable, error) {
	repo.deliverables.Lock()
	defer repo.deliverables.Unlock()

	i := repo.deliverableIndex(d.ID)
	if i < 0 {
		return review.Deliverable{}, review.ErrDeliverableNotFound
	}
	repo.deliverables.rows[i] = d
	return d, nil
}

func (repo *reviewRepository) QueryDeliverables(_ context.Context, filter review.DeliverableFilter) ([]review.Deliverable, error) {
	repo.deliverables.RLock()
	defer repo.deliverables.RUnlock()

	dels := make([]review.Deliverable, 0)
	for _, d := range repo.deliverables.rows {
		if filter.Match(d) {
			dels = append(dels, d)
		}
	}
	return dels, nil
}

// Reviews

func (repo *reviewRepository) reviewIndex(id string) int {
	for i, r := range repo.reviews.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (repo *reviewRepository) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.reviews.Lock()
	defer repo.reviews.Unlock()

	if repo.reviewIndex(r.ID) >= 0 {
		return review.Review{}, errors.Errorf("review %s already exists", r.ID)
	}
	repo.reviews.rows = append(repo.reviews.rows, r)
	return r, nil
}

func (repo *reviewRepository) GetReview(_ context.Context, id string) (review.Review, error) {
	repo.reviews.RLock()
	defer repo.reviews.RUnlock()

	if i := repo.reviewIndex(id); i >= 0 {
		return repo.reviews.rows[i], nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) UpdateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.reviews.Lock()
	defer repo.reviews.Unlock()

	i := repo.reviewIndex(r.ID)
	if i < 0 {
		return review.Review{}, review.ErrNotFound
	}
	repo.reviews.rows[i] = r
	return r, nil
}

func (repo *reviewRepository) QueryReviews(_ context.Context, filter review.ReviewFilter) ([]review.Review, error) {
	repo.reviews.RLock()
	defer repo.reviews.RUnlock()

	rvws := make([]review.Review, 0)
	for _, r := range repo.reviews.rows {
		if filter.Match(r) {
			rvws = append(rvws, r)
		}
	}
	return rvws, nil
}
