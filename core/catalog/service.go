package catalog

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrCohortNotFound     = errors.New("cohort not found")
	ErrWorkstreamNotFound = errors.New("workstream not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrSessionNotFound    = errors.New("session not found")
)

type (
	// Repository gives read access to the reference data. It is loaded from the seed and never mutated.
	Repository interface {
		QueryCohorts(ctx context.Context) ([]Cohort, error)
		GetCohort(ctx context.Context, id string) (Cohort, error)
		QueryWorkstreams(ctx context.Context) ([]Workstream, error)
		GetWorkstream(ctx context.Context, id string) (Workstream, error)
		QueryProjects(ctx context.Context, filter ProjectFilter) ([]Project, error)
		GetProject(ctx context.Context, id string) (Project, error)
		QuerySessions(ctx context.Context, filter SessionFilter) ([]ClassSession, error)
		GetSession(ctx context.Context, id string) (ClassSession, error)
	}

	Service interface {
		Cohorts(ctx context.Context) ([]Cohort, error)
		Cohort(ctx context.Context, id string) (Cohort, error)
		Workstreams(ctx context.Context) ([]Workstream, error)
		Workstream(ctx context.Context, id string) (Workstream, error)
		Projects(ctx context.Context, filter ProjectFilter) ([]Project, error)
		Project(ctx context.Context, id string) (Project, error)
		ProjectRubric(ctx context.Context, projectID string) (Rubric, error)
		Sessions(ctx context.Context, filter SessionFilter) ([]ClassSession, error)
		Session(ctx context.Context, id string) (ClassSession, error)
		LatestSession(ctx context.Context, cohortID string) (ClassSession, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Cohorts(ctx context.Context) ([]Cohort, error) { return svc.repo.QueryCohorts(ctx) }

func (svc *service) Cohort(ctx context.Context, id string) (Cohort, error) {
	return svc.repo.GetCohort(ctx, id)
}

func (svc *service) Workstreams(ctx context.Context) ([]Workstream, error) {
	return svc.repo.QueryWorkstreams(ctx)
}

func (svc *service) Workstream(ctx context.Context, id string) (Workstream, error) {
	return svc.repo.GetWorkstream(ctx, id)
}

func (svc *service) Projects(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	filter.Clean()
	return svc.repo.QueryProjects(ctx, filter)
}

func (svc *service) Project(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

// ProjectRubric returns the rubric of the workstream the project belongs to.
func (svc *service) ProjectRubric(ctx context.Context, projectID string) (Rubric, error) {
	prj, err := svc.repo.GetProject(ctx, projectID)
	if err != nil {
		return Rubric{}, err
	}
	ws, err := svc.repo.GetWorkstream(ctx, prj.WorkstreamID)
	if err != nil {
		return Rubric{}, errors.Wrapf(err, "project %s", projectID)
	}
	return ws.Rubric, nil
}

func (svc *service) Sessions(ctx context.Context, filter SessionFilter) ([]ClassSession, error) {
	filter.Clean()
	return svc.repo.QuerySessions(ctx, filter)
}

func (svc *service) Session(ctx context.Context, id string) (ClassSession, error) {
	return svc.repo.GetSession(ctx, id)
}

// LatestSession returns the most recent session of the cohort (by date, then start time).
func (svc *service) LatestSession(ctx context.Context, cohortID string) (ClassSession, error) {
	sessions, err := svc.repo.QuerySessions(ctx, SessionFilter{CohortID: cohortID})
	if err != nil {
		return ClassSession{}, err
	}
	if len(sessions) == 0 {
		return ClassSession{}, ErrSessionNotFound
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date > sessions[j].Date
		}
		return sessions[i].StartTime > sessions[j].StartTime
	})
	return sessions[0], nil
}
