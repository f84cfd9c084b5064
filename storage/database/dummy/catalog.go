package dummydb

import (
	"context"

	"github.com/trezcool/getskill/core/catalog"
)

// catalogRepository serves the read-only seed catalog; no locking needed.
type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) QueryCohorts(_ context.Context) ([]catalog.Cohort, error) {
	return append([]catalog.Cohort{}, repo.db.cohorts...), nil
}

func (repo *catalogRepository) GetCohort(_ context.Context, id string) (catalog.Cohort, error) {
	for _, c := range repo.db.cohorts {
		if c.ID == id {
			return c, nil
		}
	}
	return catalog.Cohort{}, catalog.ErrCohortNotFound
}

func (repo *catalogRepository) QueryWorkstreams(_ context.Context) ([]catalog.Workstream, error) {
	return append([]catalog.Workstream{}, repo.db.workstreams...), nil
}

func (repo *catalogRepository) GetWorkstream(_ context.Context, id string) (catalog.Workstream, error) {
	for _, w := range repo.db.workstreams {
		if w.ID == id {
			return w, nil
		}
	}
	return catalog.Workstream{}, catalog.ErrWorkstreamNotFound
}

func (repo *catalogRepository) QueryProjects(_ context.Context, filter catalog.ProjectFilter) ([]catalog.Project, error) {
	projects := make([]catalog.Project, 0)
	for _, p := range repo.db.projects {
		if filter.CohortID != "" && p.CohortID != filter.CohortID {
			continue
		}
		if filter.WorkstreamID != "" && p.WorkstreamID != filter.WorkstreamID {
			continue
		}
		if filter.MentorID != "" && p.MentorID != filter.MentorID {
			continue
		}
		if filter.StudentID != "" && !p.HasStudent(filter.StudentID) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (repo *catalogRepository) GetProject(_ context.Context, id string) (catalog.Project, error) {
	for _, p := range repo.db.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Project{}, catalog.ErrProjectNotFound
}

func (repo *catalogRepository) QuerySessions(_ context.Context, filter catalog.SessionFilter) ([]catalog.ClassSession, error) {
	sessions := make([]catalog.ClassSession, 0)
	for _, s := range repo.db.sessions {
		if filter.CohortID != "" && s.CohortID != filter.CohortID {
			continue
		}
		if filter.MentorID != "" && s.MentorID != filter.MentorID {
			continue
		}
		if filter.From != "" && s.Date < filter.From {
			continue
		}
		if filter.To != "" && s.Date > filter.To {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (repo *catalogRepository) GetSession(_ context.Context, id string) (catalog.ClassSession, error) {
	for _, s := range repo.db.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return catalog.ClassSession{}, catalog.ErrSessionNotFound
}
