package dummydb

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/task"
)

var priorityRank = map[string]int{task.PriorityLow: 1, task.PriorityMedium: 2, task.PriorityHigh: 3}

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) index(id string) int {
	for i, t := range repo.db.rows {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.index(t.ID) >= 0 {
		return task.Task{}, errors.Errorf("task %s already exists", t.ID)
	}
	repo.db.rows = append(repo.db.rows, t)
	return t, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.index(id); i >= 0 {
		return repo.db.rows[i], nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.index(t.ID)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.rows[i] = t
	return t, nil
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter task.QueryFilter, orderings ...core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.rows {
		if filter.Match(t) {
			tasks = append(tasks, t)
		}
	}

	core.SortByOrderings(tasks, orderings, func(field string, i, j int) (int, bool) {
		switch field {
		case "title":
			return strings.Compare(strings.ToLower(tasks[i].Title), strings.ToLower(tasks[j].Title)), true
		case "status":
			return strings.Compare(tasks[i].Status, tasks[j].Status), true
		case "priority":
			return priorityRank[tasks[i].Priority] - priorityRank[tasks[j].Priority], true
		case "due_date":
			return strings.Compare(tasks[i].DueDate, tasks[j].DueDate), true
		case "created_at":
			return compareTimes(tasks[i].CreatedAt, tasks[j].CreatedAt), true
		case "updated_at":
			return compareTimes(tasks[i].UpdatedAt, tasks[j].UpdatedAt), true
		}
		return 0, false
	}, noReorder)
	return tasks, nil
}
