package review

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/notification"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
)

var (
	// errors
	ErrNotFound            = errors.New("review not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrDeliverableNotFound = errors.New("deliverable not found")
	ErrAlreadyDecided      = errors.New("review has already been completed")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		UpdateSubmission(ctx context.Context, s Submission) (Submission, error)
		QuerySubmissions(ctx context.Context, filter SubmissionFilter, orderings ...core.DBOrdering) ([]Submission, error)

		GetDeliverable(ctx context.Context, id string) (Deliverable, error)
		UpdateDeliverable(ctx context.Context, d Deliverable) (Deliverable, error)
		QueryDeliverables(ctx context.Context, filter DeliverableFilter) ([]Deliverable, error)

		CreateReview(ctx context.Context, r Review) (Review, error)
		GetReview(ctx context.Context, id string) (Review, error)
		UpdateReview(ctx context.Context, r Review) (Review, error)
		QueryReviews(ctx context.Context, filter ReviewFilter) ([]Review, error)
	}

	Service interface {
		CreateSubmission(ctx context.Context, studentID string, ns NewSubmission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		QuerySubmissions(ctx context.Context, filter SubmissionFilter, orderings ...core.DBOrdering) ([]Submission, error)
		QueryDeliverables(ctx context.Context, filter DeliverableFilter) ([]Deliverable, error)
		UpdateDeliverableStatus(ctx context.Context, id string, uds UpdateDeliverableStatus) (Deliverable, error)

		CreateReview(ctx context.Context, nr NewReview) (Review, error)
		Get(ctx context.Context, id string) (Review, error)
		Start(ctx context.Context, id string) (Review, error)
		Approve(ctx context.Context, id string, d Decision) (Review, error)
		RequestChanges(ctx context.Context, id string, d Decision) (Review, error)
		Reject(ctx context.Context, id string, d Decision) (Review, error)

		Queue(ctx context.Context, viewer user.User) ([]QueueItem, error)
		Completed(ctx context.Context, viewer user.User) ([]Review, error)
		RubricTemplate(ctx context.Context, projectID string) ([]RubricScore, error)
		AverageGrade(ctx context.Context, studentID string) (int, error)
	}

	service struct {
		conf     core.ReviewConfig
		repo     Repository
		taskRepo task.Repository
		catalog  catalog.Repository
		usrRepo  user.Repository
		notifSvc notification.Service
		uow      core.UnitOfWork
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	taskRepo task.Repository,
	catalogRepo catalog.Repository,
	usrRepo user.Repository,
	notifSvc notification.Service,
	uow core.UnitOfWork,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return &service{
		conf:     conf.Review,
		repo:     repo,
		taskRepo: taskRepo,
		catalog:  catalogRepo,
		usrRepo:  usrRepo,
		notifSvc: notifSvc,
		uow:      uow,
		validate: validate,
		logger:   logger,
	}
}

// Submissions & deliverables

// CreateSubmission records the student's work for one of their tasks, moves the task to review
// and the deliverable to submitted, and opens a pending review for the project mentor (or an
// active admin when the project has no mentor).
func (svc *service) CreateSubmission(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Submission{}, err
	}

	var (
		sub   Submission
		notes []notification.Notification
	)
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		t, err := svc.taskRepo.GetTask(ctx, ns.TaskID)
		if err != nil {
			if errors.Cause(err) == task.ErrNotFound {
				return core.NewFieldError("task_id", "task not found")
			}
			return errors.Wrap(err, "getting task")
		}
		if t.AssignedTo != studentID {
			return core.NewFieldError("task_id", "task is not assigned to you")
		}

		var dlv *Deliverable
		if ns.DeliverableID != "" {
			d, err := svc.repo.GetDeliverable(ctx, ns.DeliverableID)
			if err != nil {
				if errors.Cause(err) == ErrDeliverableNotFound {
					return core.NewFieldError("deliverable_id", "deliverable not found")
				}
				return errors.Wrap(err, "getting deliverable")
			}
			if d.ProjectID != t.ProjectID {
				return core.NewFieldError("deliverable_id", "deliverable does not belong to the task's project")
			}
			dlv = &d
		}

		now := nowFunc().UTC()
		sub = Submission{
			ID:            uuid.New().String(),
			TaskID:        t.ID,
			ProjectID:     t.ProjectID,
			DeliverableID: ns.DeliverableID,
			StudentID:     studentID,
			Status:        SubmissionSubmitted,
			Content:       ns.Content,
			GithubURL:     ns.GithubURL,
			LiveURL:       ns.LiveURL,
			SubmittedAt:   &now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		reviewerID, err := svc.submissionReviewer(ctx, t.ProjectID)
		if err != nil {
			return err
		}
		rvw, err := svc.repo.CreateReview(ctx, svc.newReview(sub, reviewerID, nil, now))
		if err != nil {
			return errors.Wrap(err, "creating review")
		}
		sub.ReviewID = rvw.ID

		n, err := svc.notifSvc.Queue(ctx, notification.NewNotification{
			UserID:    reviewerID,
			Type:      notification.TypeInfo,
			Title:     "New Submission",
			Message:   fmt.Sprintf("A submission for %q is waiting for your review.", t.Title),
			ActionURL: "/review-studio",
		})
		if err != nil {
			return err
		}
		notes = append(notes, n)

		if sub, err = svc.repo.CreateSubmission(ctx, sub); err != nil {
			return errors.Wrap(err, "creating submission")
		}

		t.Status = task.StatusReview
		t.UpdatedAt = now
		if _, err = svc.taskRepo.UpdateTask(ctx, t); err != nil {
			return errors.Wrap(err, "updating task")
		}

		if dlv != nil {
			dlv.Status = DeliverableSubmitted
			dlv.SubmissionID = sub.ID
			if _, err = svc.repo.UpdateDeliverable(ctx, *dlv); err != nil {
				return errors.Wrap(err, "updating deliverable")
			}
		}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	svc.notifSvc.Deliver(ctx, notes...)
	return sub, nil
}

func (svc *service) GetSubmission(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, core.CleanString(id))
}

func (svc *service) QuerySubmissions(ctx context.Context, filter SubmissionFilter, orderings ...core.DBOrdering) ([]Submission, error) {
	filter.Clean()
	return svc.repo.QuerySubmissions(ctx, filter, orderings...)
}

func (svc *service) QueryDeliverables(ctx context.Context, filter DeliverableFilter) ([]Deliverable, error) {
	filter.Clean()
	return svc.repo.QueryDeliverables(ctx, filter)
}

func (svc *service) UpdateDeliverableStatus(ctx context.Context, id string, uds UpdateDeliverableStatus) (Deliverable, error) {
	if err := uds.Validate(svc.validate); err != nil {
		return Deliverable{}, err
	}
	var dlv Deliverable
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if dlv, err = svc.repo.GetDeliverable(ctx, core.CleanString(id)); err != nil {
			return err
		}
		dlv.Status = uds.Status
		dlv, err = svc.repo.UpdateDeliverable(ctx, dlv)
		return err
	})
	return dlv, err
}

// Reviews

func (svc *service) newReview(sub Submission, reviewerID string, deadline *time.Time, now time.Time) Review {
	if deadline == nil {
		sla := now.Add(svc.conf.SLA)
		deadline = &sla
	}
	return Review{
		ID:            uuid.New().String(),
		SubmissionID:  sub.ID,
		ProjectID:     sub.ProjectID,
		DeliverableID: sub.DeliverableID,
		ReviewerID:    reviewerID,
		Status:        StatusPending,
		Strengths:     []string{},
		Improvements:  []string{},
		RubricScores:  []RubricScore{},
		SLADeadline:   deadline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// submissionReviewer picks the project's mentor, falling back to the first active admin
// when the project has none.
func (svc *service) submissionReviewer(ctx context.Context, projectID string) (string, error) {
	prj, err := svc.catalog.GetProject(ctx, projectID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("review: project %s: %v", projectID, err))
	} else if prj.MentorID != "" {
		return prj.MentorID, nil
	}

	active := true
	admins, err := svc.usrRepo.QueryUsers(ctx, user.QueryFilter{Roles: []string{user.RoleAdmin}, IsActive: &active})
	if err != nil {
		return "", errors.Wrap(err, "querying admins")
	}
	if len(admins) == 0 {
		return "", core.NewFieldError("task_id", "no reviewer available for the task's project")
	}
	return admins[0].ID, nil
}

// CreateReview assigns a submission to a mentor or admin.
func (svc *service) CreateReview(ctx context.Context, nr NewReview) (Review, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Review{}, err
	}

	var (
		rvw Review
		n   notification.Notification
	)
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		sub, err := svc.repo.GetSubmission(ctx, nr.SubmissionID)
		if err != nil {
			return err
		}
		reviewer, err := svc.usrRepo.GetUser(ctx, nr.ReviewerID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return core.NewFieldError("reviewer_id", "reviewer not found")
			}
			return errors.Wrap(err, "getting reviewer")
		}
		if !reviewer.IsStaff() {
			return core.NewFieldError("reviewer_id", "reviewer must be a mentor or an admin")
		}

		now := nowFunc().UTC()
		if rvw, err = svc.repo.CreateReview(ctx, svc.newReview(sub, reviewer.ID, nr.SLADeadline, now)); err != nil {
			return errors.Wrap(err, "creating review")
		}
		sub.ReviewID = rvw.ID
		sub.UpdatedAt = now
		if _, err = svc.repo.UpdateSubmission(ctx, sub); err != nil {
			return errors.Wrap(err, "updating submission")
		}

		n, err = svc.notifSvc.Queue(ctx, notification.NewNotification{
			UserID:    reviewer.ID,
			Type:      notification.TypeInfo,
			Title:     "Review Assigned",
			Message:   "A submission has been assigned to you for review.",
			ActionURL: "/review-studio",
		})
		return err
	})
	if err != nil {
		return Review{}, err
	}
	svc.notifSvc.Deliver(ctx, n)
	return rvw, nil
}

func (svc *service) Get(ctx context.Context, id string) (Review, error) {
	return svc.repo.GetReview(ctx, core.CleanString(id))
}

// Start moves a pending review to in-progress. Reviews already started or completed are
// returned unchanged.
func (svc *service) Start(ctx context.Context, id string) (Review, error) {
	var rvw Review
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if rvw, err = svc.repo.GetReview(ctx, core.CleanString(id)); err != nil {
			return err
		}
		if rvw.Status != StatusPending {
			return nil
		}
		now := nowFunc().UTC()
		rvw.Status = StatusInProgress
		rvw.StartedAt = &now
		rvw.UpdatedAt = now
		rvw, err = svc.repo.UpdateReview(ctx, rvw)
		return err
	})
	return rvw, err
}

func (svc *service) Approve(ctx context.Context, id string, d Decision) (Review, error) {
	return svc.decide(ctx, id, DecisionApproved, d)
}

func (svc *service) RequestChanges(ctx context.Context, id string, d Decision) (Review, error) {
	return svc.decide(ctx, id, DecisionRevisionRequested, d)
}

func (svc *service) Reject(ctx context.Context, id string, d Decision) (Review, error) {
	return svc.decide(ctx, id, DecisionRejected, d)
}

// decide completes the review and applies the decision to the submission, its deliverable
// and its task. Either every change is stored or none is.
func (svc *service) decide(ctx context.Context, id, decision string, d Decision) (Review, error) {
	d.clean()
	if err := svc.validate.Struct(d); err != nil {
		return Review{}, err
	}

	var (
		rvw   Review
		notes []notification.Notification
	)
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if rvw, err = svc.repo.GetReview(ctx, core.CleanString(id)); err != nil {
			return err
		}
		if rvw.IsCompleted() {
			return ErrAlreadyDecided
		}

		grade, err := svc.resolveGrade(ctx, rvw, decision, d)
		if err != nil {
			return err
		}

		now := nowFunc().UTC()
		rvw.Status = StatusCompleted
		rvw.Decision = decision
		rvw.Feedback = d.Feedback
		rvw.RubricScores = d.RubricScores
		rvw.Strengths = nonNil(d.Strengths)
		rvw.Improvements = nonNil(d.Improvements)
		rvw.Grade = &grade
		rvw.CompletedAt = &now
		rvw.UpdatedAt = now
		if rvw, err = svc.repo.UpdateReview(ctx, rvw); err != nil {
			return errors.Wrap(err, "updating review")
		}

		notes, err = svc.applyDecision(ctx, rvw, grade, now)
		return err
	})
	if err != nil {
		return Review{}, err
	}
	svc.notifSvc.Deliver(ctx, notes...)
	return rvw, nil
}

// resolveGrade returns the decision's grade, computing it from the rubric when none is given,
// and enforces the decision rules when strict decisions are enabled.
func (svc *service) resolveGrade(ctx context.Context, rvw Review, decision string, d Decision) (int, error) {
	var fields []core.FieldError

	var grade int
	switch {
	case d.Grade != nil:
		grade = *d.Grade
	case len(d.RubricScores) == 0:
		fields = append(fields, core.FieldError{Field: "grade", Error: "a grade or rubric scores are required"})
	default:
		g, err := ComputeGrade(d.RubricScores)
		if err != nil {
			fields = append(fields, core.FieldError{Field: "rubric_scores", Error: err.Error()})
		}
		grade = g
	}
	graded := len(fields) == 0

	if svc.conf.StrictDecisions {
		if d.Feedback == "" {
			fields = append(fields, core.FieldError{Field: "feedback", Error: "feedback is required"})
		}
		switch decision {
		case DecisionApproved:
			if passMark := svc.passMark(ctx, rvw.ProjectID); graded && grade < passMark {
				fields = append(fields, core.FieldError{
					Field: "grade",
					Error: fmt.Sprintf("grade %d is below the pass mark of %d", grade, passMark),
				})
			}
		case DecisionRevisionRequested:
			if len(d.Improvements) == 0 {
				fields = append(fields, core.FieldError{Field: "improvements", Error: "at least one improvement is required"})
			}
		}
	}

	if len(fields) > 0 {
		return 0, core.NewValidationError(errors.New("invalid review decision"), fields...)
	}
	return grade, nil
}

func (svc *service) passMark(ctx context.Context, projectID string) int {
	prj, err := svc.catalog.GetProject(ctx, projectID)
	if err != nil {
		return svc.conf.PassMark
	}
	ws, err := svc.catalog.GetWorkstream(ctx, prj.WorkstreamID)
	if err != nil || ws.Rubric.PassMark <= 0 {
		return svc.conf.PassMark
	}
	return ws.Rubric.PassMark
}

func (svc *service) applyDecision(ctx context.Context, rvw Review, grade int, now time.Time) ([]notification.Notification, error) {
	sub, err := svc.repo.GetSubmission(ctx, rvw.SubmissionID)
	found := err == nil
	if err != nil {
		if errors.Cause(err) != ErrSubmissionNotFound {
			return nil, errors.Wrap(err, "getting submission")
		}
		svc.logger.Warn(fmt.Sprintf("review %s: submission %s not found", rvw.ID, rvw.SubmissionID))
	}

	var (
		subStatus, dlvStatus, taskStatus string
		nn                               notification.NewNotification
	)
	switch rvw.Decision {
	case DecisionApproved:
		subStatus, dlvStatus, taskStatus = SubmissionApproved, DeliverableApproved, task.StatusCompleted
		nn = notification.NewNotification{
			Type:    notification.TypeSuccess,
			Title:   "Submission Approved",
			Message: fmt.Sprintf("Your submission has been approved with a score of %d%%.", grade),
		}
	case DecisionRevisionRequested:
		subStatus, dlvStatus, taskStatus = SubmissionRevisionRequested, DeliverablePending, task.StatusInProgress
		nn = notification.NewNotification{
			Type:  notification.TypeWarning,
			Title: "Changes Requested",
			Message: fmt.Sprintf(
				"Your mentor has requested %d %s. %d revision %s added to your board.",
				len(rvw.Improvements), plural(len(rvw.Improvements), "change"),
				len(rvw.Improvements), plural(len(rvw.Improvements), "task"),
			),
		}
	case DecisionRejected:
		subStatus = SubmissionRejected
		nn = notification.NewNotification{
			Type:    notification.TypeError,
			Title:   "Submission Rejected",
			Message: "Your submission did not meet the minimum standard. Please review the feedback and resubmit.",
		}
	default:
		return nil, errors.Errorf("unknown decision %q", rvw.Decision)
	}

	if found {
		sub.Status = subStatus
		sub.Grade = &grade
		sub.UpdatedAt = now
		if _, err = svc.repo.UpdateSubmission(ctx, sub); err != nil {
			return nil, errors.Wrap(err, "updating submission")
		}
	}
	if dlvStatus != "" {
		if err = svc.setDeliverableStatus(ctx, rvw.DeliverableID, dlvStatus); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, nil
	}

	if taskStatus != "" {
		if err = svc.setTaskStatus(ctx, sub.TaskID, taskStatus, now); err != nil {
			return nil, err
		}
	}
	if rvw.Decision == DecisionRevisionRequested {
		for _, item := range rvw.Improvements {
			if _, err = svc.taskRepo.CreateTask(ctx, revisionTask(rvw, sub, item)); err != nil {
				return nil, errors.Wrap(err, "creating revision task")
			}
		}
	}

	nn.UserID = sub.StudentID
	nn.ActionURL = "/submissions/" + sub.ID
	n, err := svc.notifSvc.Queue(ctx, nn)
	if err != nil {
		return nil, err
	}
	return []notification.Notification{n}, nil
}

func (svc *service) setDeliverableStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return nil
	}
	dlv, err := svc.repo.GetDeliverable(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrDeliverableNotFound {
			svc.logger.Warn(fmt.Sprintf("review: deliverable %s not found", id))
			return nil
		}
		return errors.Wrap(err, "getting deliverable")
	}
	dlv.Status = status
	_, err = svc.repo.UpdateDeliverable(ctx, dlv)
	return errors.Wrap(err, "updating deliverable")
}

func (svc *service) setTaskStatus(ctx context.Context, id, status string, now time.Time) error {
	t, err := svc.taskRepo.GetTask(ctx, id)
	if err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			svc.logger.Warn(fmt.Sprintf("review: task %s not found", id))
			return nil
		}
		return errors.Wrap(err, "getting task")
	}
	t.Status = status
	t.UpdatedAt = now
	_, err = svc.taskRepo.UpdateTask(ctx, t)
	return errors.Wrap(err, "updating task")
}

func revisionTask(rvw Review, sub Submission, item string) task.Task {
	return task.New(task.NewTask{
		Title:        "Revision: " + item,
		Description:  fmt.Sprintf("Requested by mentor in review of submission %s. %s", sub.ID, item),
		ProjectID:    sub.ProjectID,
		AssignedTo:   sub.StudentID,
		Status:       task.StatusTodo,
		Priority:     task.PriorityHigh,
		Tags:         []string{task.TagRevision, task.TagRequestedChanges},
		FromReviewID: rvw.ID,
	})
}

// RubricTemplate returns the unscored rubric of the project's workstream.
func (svc *service) RubricTemplate(ctx context.Context, projectID string) ([]RubricScore, error) {
	prj, err := svc.catalog.GetProject(ctx, core.CleanString(projectID))
	if err != nil {
		return nil, err
	}
	ws, err := svc.catalog.GetWorkstream(ctx, prj.WorkstreamID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrWorkstreamNotFound {
			return BlankRubric(nil), nil
		}
		return nil, err
	}
	return BlankRubric(ws.Rubric.Categories), nil
}

// AverageGrade is the rounded mean grade of the student's graded submissions, 0 without any.
func (svc *service) AverageGrade(ctx context.Context, studentID string) (int, error) {
	subs, err := svc.repo.QuerySubmissions(ctx, SubmissionFilter{StudentID: studentID, GradedOnly: true})
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}
	var total int
	for _, s := range subs {
		total += *s.Grade
	}
	return core.Round(float64(total) / float64(len(subs))), nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
