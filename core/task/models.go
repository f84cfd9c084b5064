package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/getskill/core"
)

// Statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusReview     = "review"
	StatusCompleted  = "completed"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Tags put on tasks generated from a review asking for changes.
const (
	TagRevision         = "revision"
	TagRequestedChanges = "requested-changes"
)

var (
	AllStatuses   = []string{StatusTodo, StatusInProgress, StatusReview, StatusCompleted}
	AllPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID             string    `json:"id" yaml:"id"`
	Title          string    `json:"title" yaml:"title"`
	Description    string    `json:"description" yaml:"description"`
	ProjectID      string    `json:"project_id" yaml:"projectId"`
	AssignedTo     string    `json:"assigned_to" yaml:"assignedTo"`
	Status         string    `json:"status" yaml:"status"`
	Priority       string    `json:"priority" yaml:"priority"`
	DueDate        string    `json:"due_date,omitempty" yaml:"dueDate"`
	EstimatedHours float64   `json:"estimated_hours,omitempty" yaml:"estimatedHours"`
	Tags           []string  `json:"tags" yaml:"tags"`
	FromReviewID   string    `json:"from_review_id,omitempty" yaml:"fromReviewId"`
	CreatedAt      time.Time `json:"created_at" yaml:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updatedAt"`
}

// IsRevision reports whether the task was generated by a review.
func (t Task) IsRevision() bool { return t.FromReviewID != "" }

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title          string   `json:"title" validate:"required,notblank,max=200"`
	Description    string   `json:"description"`
	ProjectID      string   `json:"project_id" validate:"required"`
	AssignedTo     string   `json:"assigned_to" validate:"required"`
	Status         string   `json:"status" validate:"omitempty,oneof=todo in-progress review completed"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate        string   `json:"due_date" validate:"omitempty,date"`
	EstimatedHours float64  `json:"estimated_hours" validate:"gte=0"`
	Tags           []string `json:"tags"`
	FromReviewID   string   `json:"from_review_id"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.ProjectID = core.CleanString(nt.ProjectID)
	nt.AssignedTo = core.CleanString(nt.AssignedTo)
	nt.Status = core.CleanString(nt.Status, true /* lower */)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	nt.Tags = core.CleanStrings(nt.Tags)
	if nt.Status == "" {
		nt.Status = StatusTodo
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	return validate.Struct(nt)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=todo in-progress review completed"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	ProjectID    string   `query:"project_id"`
	AssignedTo   string   `query:"assigned_to"`
	Statuses     []string `query:"status"`
	Priority     string   `query:"priority"`
	FromReviewID string   `query:"from_review_id"`
	Tag          string   `query:"tag"`
}

func (qf *QueryFilter) Clean() {
	qf.ProjectID = core.CleanString(qf.ProjectID)
	qf.AssignedTo = core.CleanString(qf.AssignedTo)
	qf.Statuses = core.CleanStrings(qf.Statuses)
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
	qf.FromReviewID = core.CleanString(qf.FromReviewID)
	qf.Tag = core.CleanString(qf.Tag)
}

// Match reports whether t satisfies every set field of the filter.
func (qf QueryFilter) Match(t Task) bool {
	if qf.ProjectID != "" && t.ProjectID != qf.ProjectID {
		return false
	}
	if qf.AssignedTo != "" && t.AssignedTo != qf.AssignedTo {
		return false
	}
	if len(qf.Statuses) > 0 && !contains(qf.Statuses, t.Status) {
		return false
	}
	if qf.Priority != "" && t.Priority != qf.Priority {
		return false
	}
	if qf.FromReviewID != "" && t.FromReviewID != qf.FromReviewID {
		return false
	}
	if qf.Tag != "" && !contains(t.Tags, qf.Tag) {
		return false
	}
	return true
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
