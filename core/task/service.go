package task

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
)

var ErrNotFound = errors.New("task not found")

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		QueryTasks(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Task, error)
	}

	Service interface {
		Create(ctx context.Context, nt NewTask) (Task, error)
		Get(ctx context.Context, id string) (Task, error)
		Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Task, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Task, error)
		CompletionRate(ctx context.Context, studentID string) (int, error)
	}

	service struct {
		repo     Repository
		uow      core.UnitOfWork
		validate *validator.Validate
	}
)

var (
	_ Service = (*service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(repo Repository, uow core.UnitOfWork, validate *validator.Validate) Service {
	return &service{repo: repo, uow: uow, validate: validate}
}

// New builds a Task from already validated data.
func New(nt NewTask) Task {
	now := nowFunc().UTC()
	tags := nt.Tags
	if tags == nil {
		tags = []string{}
	}
	return Task{
		ID:             uuid.New().String(),
		Title:          nt.Title,
		Description:    nt.Description,
		ProjectID:      nt.ProjectID,
		AssignedTo:     nt.AssignedTo,
		Status:         nt.Status,
		Priority:       nt.Priority,
		DueDate:        nt.DueDate,
		EstimatedHours: nt.EstimatedHours,
		Tags:           tags,
		FromReviewID:   nt.FromReviewID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (svc *service) Create(ctx context.Context, nt NewTask) (Task, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Task{}, err
	}
	var t Task
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		t, err = svc.repo.CreateTask(ctx, New(nt))
		return errors.Wrap(err, "creating task")
	})
	return t, err
}

func (svc *service) Get(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTask(ctx, core.CleanString(id))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Task, error) {
	filter.Clean()
	return svc.repo.QueryTasks(ctx, filter, orderings...)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Task, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Task{}, err
	}
	var t Task
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if t, err = svc.repo.GetTask(ctx, core.CleanString(id)); err != nil {
			return err
		}
		t.Status = us.Status
		t.UpdatedAt = nowFunc().UTC()
		t, err = svc.repo.UpdateTask(ctx, t)
		return err
	})
	return t, err
}

// CompletionRate is the share of the student's tasks that are completed, in percent.
func (svc *service) CompletionRate(ctx context.Context, studentID string) (int, error) {
	tasks, err := svc.repo.QueryTasks(ctx, QueryFilter{AssignedTo: studentID})
	if err != nil {
		return 0, err
	}
	var done int
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			done++
		}
	}
	return core.Percent(done, len(tasks)), nil
}
