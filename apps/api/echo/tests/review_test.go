package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/getskill/apps/api/echo"
	"github.com/trezcool/getskill/core/review"
	"github.com/trezcool/getskill/core/task"
)

func rubric(score float64) []review.RubricScore {
	return []review.RubricScore{
		{Category: "Code Quality", Weight: 25, Score: score, MaxScore: 5},
		{Category: "Technical Correctness", Weight: 30, Score: score, MaxScore: 5},
		{Category: "Documentation", Weight: 20, Score: score, MaxScore: 5},
		{Category: "Best Practices", Weight: 25, Score: score, MaxScore: 5},
	}
}

func TestReviewApi_Approve(t *testing.T) {
	a := setup(t)
	token := a.token(t, "mentor-1")
	body := marchallObj(t, review.Decision{Feedback: "Responsive and tidy.", RubricScores: rubric(4)})

	rec := a.do(http.MethodPost, "/v1/reviews/rev-2/approve", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rvw review.Review
	unmarshal(t, rec, &rvw)
	assert.Equal(t, review.StatusCompleted, rvw.Status)
	assert.Equal(t, review.DecisionApproved, rvw.Decision)
	require.NotNil(t, rvw.Grade)
	assert.Equal(t, 80, *rvw.Grade)

	// the task moved along with the review
	rec = a.do(http.MethodGet, "/v1/tasks/task-3", a.token(t, "student-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	var tsk task.Task
	unmarshal(t, rec, &tsk)
	assert.Equal(t, task.StatusCompleted, tsk.Status)

	// a second decision conflicts
	rec = a.do(http.MethodPost, "/v1/reviews/rev-2/reject", token, body)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusConflict,
		wantData: marchallObj(t, httpErr{Error: review.ErrAlreadyDecided.Error()}),
	}, rec)
}

func TestReviewApi_Decide(t *testing.T) {
	a := setup(t)
	mentor1 := a.token(t, "mentor-1")

	tests := []httpTest{
		{
			name:     "no token",
			path:     "/v1/reviews/rev-2/approve",
			body:     marchallObj(t, review.Decision{Feedback: "ok", RubricScores: rubric(5)}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "student forbidden",
			path:     "/v1/reviews/rev-2/approve",
			token:    a.token(t, "student-2"),
			body:     marchallObj(t, review.Decision{Feedback: "ok", RubricScores: rubric(5)}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "another mentor's review",
			path:     "/v1/reviews/rev-3/reject",
			token:    mentor1,
			body:     marchallObj(t, review.Decision{Feedback: "no", Grade: intPtr(20)}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "unknown review",
			path:     "/v1/reviews/rev-404/approve",
			token:    a.token(t, "admin-1"),
			body:     marchallObj(t, review.Decision{Feedback: "ok", RubricScores: rubric(5)}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: review.ErrNotFound.Error()}),
		},
		{
			name:     "approve below pass mark",
			path:     "/v1/reviews/rev-2/approve",
			token:    mentor1,
			body:     marchallObj(t, review.Decision{Feedback: "meh", RubricScores: rubric(2)}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing feedback",
			path:     "/v1/reviews/rev-2/reject",
			token:    mentor1,
			body:     marchallObj(t, review.Decision{Grade: intPtr(20)}),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	// nothing above decided rev-2
	rvw, err := a.ReviewSvc.Get(context.Background(), "rev-2")
	require.NoError(t, err)
	assert.Equal(t, review.StatusPending, rvw.Status)
}

func TestReviewApi_Queue(t *testing.T) {
	a := setup(t)

	rec := a.do(http.MethodGet, "/v1/reviews/queue", a.token(t, "mentor-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []review.QueueItem
	unmarshal(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "rev-2", items[0].ID)

	rec = a.do(http.MethodGet, "/v1/reviews/queue", a.token(t, "admin-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshal(t, rec, &items)
	assert.Len(t, items, 2)
}

func TestReviewApi_Grade(t *testing.T) {
	a := setup(t)
	token := a.token(t, "mentor-2")

	tests := []struct {
		name     string
		scores   []review.RubricScore
		wantCode int
		want     echoapi.GradeResponse
	}{
		{name: "distinction", scores: rubric(5), wantCode: http.StatusOK, want: echoapi.GradeResponse{Grade: 100, Band: "distinction"}},
		{name: "pass", scores: rubric(4), wantCode: http.StatusOK, want: echoapi.GradeResponse{Grade: 80, Band: "pass"}},
		{name: "fail", scores: rubric(3), wantCode: http.StatusOK, want: echoapi.GradeResponse{Grade: 60, Band: "fail"}},
		{name: "empty rubric", scores: nil, wantCode: http.StatusBadRequest},
		{name: "score above max", scores: []review.RubricScore{{Category: "x", Weight: 10, Score: 9, MaxScore: 5}}, wantCode: http.StatusBadRequest},
		{name: "negative score", scores: []review.RubricScore{{Category: "x", Weight: 10, Score: -3, MaxScore: 5}}, wantCode: http.StatusBadRequest},
		{
			name: "negative weight",
			scores: []review.RubricScore{
				{Category: "x", Weight: 10, Score: 5, MaxScore: 5},
				{Category: "y", Weight: -5, Score: 0, MaxScore: 5},
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			body := marchallObj(t, echoapi.GradeRequest{RubricScores: tc.scores})
			rec := a.do(http.MethodPost, "/v1/reviews/grade", token, body)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusOK {
				return
			}
			var got echoapi.GradeResponse
			unmarshal(t, rec, &got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReviewApi_Submit(t *testing.T) {
	a := setup(t)
	body := marchallObj(t, review.NewSubmission{
		TaskID:        "task-4",
		DeliverableID: "del-3",
		Content:       "Deployed the landing page.",
		LiveURL:       "https://student2.example.com",
	})

	rec := a.do(http.MethodPost, "/v1/submissions", a.token(t, "mentor-1"), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/v1/submissions", a.token(t, "student-2"), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub review.Submission
	unmarshal(t, rec, &sub)
	assert.Equal(t, "student-2", sub.StudentID)
	assert.Equal(t, review.SubmissionSubmitted, sub.Status)
	assert.NotEmpty(t, sub.ReviewID)

	// students only see their own submissions
	rec = a.do(http.MethodGet, "/v1/submissions/"+sub.ID, a.token(t, "student-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodGet, "/v1/submissions/"+sub.ID, a.token(t, "student-2"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func intPtr(i int) *int {
	return &i
}
