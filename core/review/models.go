package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/getskill/core"
)

// Submission statuses
const (
	SubmissionDraft             = "draft"
	SubmissionSubmitted         = "submitted"
	SubmissionApproved          = "approved"
	SubmissionRevisionRequested = "revision-requested"
	SubmissionRejected          = "rejected"
)

// Deliverable statuses
const (
	DeliverablePending           = "pending"
	DeliverableSubmitted         = "submitted"
	DeliverableApproved          = "approved"
	DeliverableRevisionRequested = "revision-requested"
)

// Review statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Decisions
const (
	DecisionApproved          = "approved"
	DecisionRevisionRequested = "revision-requested"
	DecisionRejected          = "rejected"
)

type Submission struct {
	ID            string     `json:"id" yaml:"id"`
	TaskID        string     `json:"task_id" yaml:"taskId"`
	ProjectID     string     `json:"project_id" yaml:"projectId"`
	DeliverableID string     `json:"deliverable_id,omitempty" yaml:"deliverableId"`
	StudentID     string     `json:"student_id" yaml:"studentId"`
	Status        string     `json:"status" yaml:"status"`
	Content       string     `json:"content" yaml:"content"`
	GithubURL     string     `json:"github_url,omitempty" yaml:"githubUrl"`
	LiveURL       string     `json:"live_url,omitempty" yaml:"liveUrl"`
	ReviewID      string     `json:"review_id,omitempty" yaml:"reviewId"`
	Grade         *int       `json:"grade,omitempty" yaml:"grade"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty" yaml:"submittedAt"`
	CreatedAt     time.Time  `json:"created_at" yaml:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" yaml:"updatedAt"`
}

type Deliverable struct {
	ID           string `json:"id" yaml:"id"`
	ProjectID    string `json:"project_id" yaml:"projectId"`
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	DueDate      string `json:"due_date" yaml:"dueDate"`
	Status       string `json:"status" yaml:"status"`
	SubmissionID string `json:"submission_id,omitempty" yaml:"submissionId"`
	Order        int    `json:"order" yaml:"order"`
}

type RubricScore struct {
	Category string  `json:"category" yaml:"category" validate:"required,notblank"`
	Weight   float64 `json:"weight" yaml:"weight" validate:"gte=0"`
	Score    float64 `json:"score" yaml:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore float64 `json:"max_score" yaml:"maxScore" validate:"gt=0"`
	Comment  string  `json:"comment,omitempty" yaml:"comment"`
}

type Review struct {
	ID            string        `json:"id" yaml:"id"`
	SubmissionID  string        `json:"submission_id" yaml:"submissionId"`
	ProjectID     string        `json:"project_id" yaml:"projectId"`
	DeliverableID string        `json:"deliverable_id,omitempty" yaml:"deliverableId"`
	ReviewerID    string        `json:"reviewer_id" yaml:"reviewerId"`
	Status        string        `json:"status" yaml:"status"`
	Decision      string        `json:"decision,omitempty" yaml:"decision"`
	Feedback      string        `json:"feedback" yaml:"feedback"`
	Strengths     []string      `json:"strengths" yaml:"strengths"`
	Improvements  []string      `json:"improvements" yaml:"improvements"`
	Grade         *int          `json:"grade,omitempty" yaml:"grade"`
	RubricScores  []RubricScore `json:"rubric_scores" yaml:"rubricScores"`
	SLADeadline   *time.Time    `json:"sla_deadline,omitempty" yaml:"slaDeadline"`
	StartedAt     *time.Time    `json:"started_at,omitempty" yaml:"startedAt"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" yaml:"completedAt"`
	CreatedAt     time.Time     `json:"created_at" yaml:"createdAt"`
	UpdatedAt     time.Time     `json:"updated_at" yaml:"updatedAt"`
}

func (r Review) IsCompleted() bool { return r.Status == StatusCompleted }

// NewSubmission contains information needed to submit work for a task.
type NewSubmission struct {
	TaskID        string `json:"task_id" validate:"required"`
	DeliverableID string `json:"deliverable_id"`
	Content       string `json:"content" validate:"required,notblank"`
	GithubURL     string `json:"github_url" validate:"omitempty,url"`
	LiveURL       string `json:"live_url" validate:"omitempty,url"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.TaskID = core.CleanString(ns.TaskID)
	ns.DeliverableID = core.CleanString(ns.DeliverableID)
	ns.Content = core.CleanString(ns.Content)
	ns.GithubURL = core.CleanString(ns.GithubURL)
	ns.LiveURL = core.CleanString(ns.LiveURL)
	return validate.Struct(ns)
}

// NewReview assigns a submission to a reviewer. A nil SLADeadline uses the configured SLA.
type NewReview struct {
	SubmissionID string     `json:"submission_id" validate:"required"`
	ReviewerID   string     `json:"reviewer_id" validate:"required"`
	SLADeadline  *time.Time `json:"sla_deadline"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.SubmissionID = core.CleanString(nr.SubmissionID)
	nr.ReviewerID = core.CleanString(nr.ReviewerID)
	return validate.Struct(nr)
}

// Decision is what a reviewer hands in when completing a review.
// A nil Grade is computed from RubricScores.
type Decision struct {
	Feedback     string        `json:"feedback"`
	RubricScores []RubricScore `json:"rubric_scores" validate:"dive"`
	Strengths    []string      `json:"strengths"`
	Improvements []string      `json:"improvements"`
	Grade        *int          `json:"grade" validate:"omitempty,min=0,max=100"`
}

func (d *Decision) clean() {
	d.Feedback = core.CleanString(d.Feedback)
	d.Strengths = core.CleanStrings(d.Strengths)
	d.Improvements = core.CleanStrings(d.Improvements)
	for i := range d.RubricScores {
		d.RubricScores[i].Category = core.CleanString(d.RubricScores[i].Category)
		d.RubricScores[i].Comment = core.CleanString(d.RubricScores[i].Comment)
	}
	if d.RubricScores == nil {
		d.RubricScores = []RubricScore{}
	}
}

type UpdateDeliverableStatus struct {
	Status string `json:"status" validate:"required,oneof=pending submitted approved revision-requested"`
}

func (uds *UpdateDeliverableStatus) Validate(validate *validator.Validate) error {
	uds.Status = core.CleanString(uds.Status, true /* lower */)
	return validate.Struct(uds)
}

type SubmissionFilter struct {
	StudentID     string   `query:"student_id"`
	TaskID        string   `query:"task_id"`
	ProjectID     string   `query:"project_id"`
	DeliverableID string   `query:"deliverable_id"`
	Statuses      []string `query:"status"`
	GradedOnly    bool     `query:"graded"`
}

func (f *SubmissionFilter) Clean() {
	f.StudentID = core.CleanString(f.StudentID)
	f.TaskID = core.CleanString(f.TaskID)
	f.ProjectID = core.CleanString(f.ProjectID)
	f.DeliverableID = core.CleanString(f.DeliverableID)
	f.Statuses = core.CleanStrings(f.Statuses)
}

func (f SubmissionFilter) Match(s Submission) bool {
	return (f.StudentID == "" || s.StudentID == f.StudentID) &&
		(f.TaskID == "" || s.TaskID == f.TaskID) &&
		(f.ProjectID == "" || s.ProjectID == f.ProjectID) &&
		(f.DeliverableID == "" || s.DeliverableID == f.DeliverableID) &&
		(len(f.Statuses) == 0 || contains(f.Statuses, s.Status)) &&
		(!f.GradedOnly || s.Grade != nil)
}

type DeliverableFilter struct {
	ProjectID string `query:"project_id"`
	Status    string `query:"status"`
}

func (f *DeliverableFilter) Clean() {
	f.ProjectID = core.CleanString(f.ProjectID)
	f.Status = core.CleanString(f.Status, true /* lower */)
}

func (f DeliverableFilter) Match(d Deliverable) bool {
	return (f.ProjectID == "" || d.ProjectID == f.ProjectID) && (f.Status == "" || d.Status == f.Status)
}

type ReviewFilter struct {
	ReviewerID   string   `query:"reviewer_id"`
	SubmissionID string   `query:"submission_id"`
	ProjectID    string   `query:"project_id"`
	Statuses     []string `query:"status"`
}

func (f ReviewFilter) Match(r Review) bool {
	return (f.ReviewerID == "" || r.ReviewerID == f.ReviewerID) &&
		(f.SubmissionID == "" || r.SubmissionID == f.SubmissionID) &&
		(f.ProjectID == "" || r.ProjectID == f.ProjectID) &&
		(len(f.Statuses) == 0 || contains(f.Statuses, r.Status))
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
