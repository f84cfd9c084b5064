package catalog

import "github.com/trezcool/getskill/core"

// Cohort statuses
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Project statuses
const (
	ProjectLive     = "live"
	ProjectArchived = "archived"
	ProjectUpcoming = "upcoming"
)

type Cohort struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	StartDate     string   `json:"start_date" yaml:"startDate"`
	EndDate       string   `json:"end_date" yaml:"endDate"`
	Status        string   `json:"status" yaml:"status"`
	MentorIDs     []string `json:"mentor_ids" yaml:"mentorIds"`
	WorkstreamIDs []string `json:"workstream_ids" yaml:"workstreamIds"`
}

type RubricCategory struct {
	Name     string   `json:"name" yaml:"name"`
	Weight   float64  `json:"weight" yaml:"weight"`
	Criteria []string `json:"criteria,omitempty" yaml:"criteria"`
}

type Rubric struct {
	Categories      []RubricCategory `json:"categories" yaml:"categories"`
	PassMark        int              `json:"pass_mark" yaml:"passMark"`
	DistinctionMark int              `json:"distinction_mark" yaml:"distinctionMark"`
}

type Workstream struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	ShortName        string   `json:"short_name" yaml:"shortName"`
	Description      string   `json:"description" yaml:"description"`
	CohortIDs        []string `json:"cohort_ids" yaml:"cohortIds"`
	Rubric           Rubric   `json:"rubric" yaml:"rubric"`
	InternshipWeight int      `json:"internship_weight" yaml:"internshipWeight"`
}

type Project struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	WorkstreamID     string   `json:"workstream_id" yaml:"workstreamId"`
	CohortID         string   `json:"cohort_id" yaml:"cohortId"`
	MentorID         string   `json:"mentor_id,omitempty" yaml:"mentorId"`
	StudentIDs       []string `json:"student_ids" yaml:"studentIds"`
	Order            int      `json:"order" yaml:"order"`
	Status           string   `json:"status" yaml:"status"`
	StartDate        string   `json:"start_date" yaml:"startDate"`
	EndDate          string   `json:"end_date" yaml:"endDate"`
	LearningOutcomes []string `json:"learning_outcomes,omitempty" yaml:"learningOutcomes"`
}

// HasStudent reports whether the student is enrolled in the project.
func (p Project) HasStudent(studentID string) bool {
	for _, id := range p.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// ClassSession is a scheduled class meeting attendance is taken against.
type ClassSession struct {
	ID        string `json:"id" yaml:"id"`
	CohortID  string `json:"cohort_id" yaml:"cohortId"`
	Title     string `json:"title" yaml:"title"`
	Date      string `json:"date" yaml:"date"` // YYYY-MM-DD
	StartTime string `json:"start_time" yaml:"startTime"`
	EndTime   string `json:"end_time" yaml:"endTime"`
	Topic     string `json:"topic" yaml:"topic"`
	MentorID  string `json:"mentor_id" yaml:"mentorId"`
	Location  string `json:"location" yaml:"location"`
}

type ProjectFilter struct {
	CohortID     string `query:"cohort_id"`
	WorkstreamID string `query:"workstream_id"`
	MentorID     string `query:"mentor_id"`
	StudentID    string `query:"student_id"`
	Status       string `query:"status"`
}

func (pf *ProjectFilter) Clean() {
	pf.CohortID = core.CleanString(pf.CohortID)
	pf.WorkstreamID = core.CleanString(pf.WorkstreamID)
	pf.MentorID = core.CleanString(pf.MentorID)
	pf.StudentID = core.CleanString(pf.StudentID)
	pf.Status = core.CleanString(pf.Status, true /* lower */)
}

type SessionFilter struct {
	CohortID string `query:"cohort_id"`
	MentorID string `query:"mentor_id"`
	From     string `query:"from"` // inclusive YYYY-MM-DD
	To       string `query:"to"`   // inclusive YYYY-MM-DD
}

func (sf *SessionFilter) Clean() {
	sf.CohortID = core.CleanString(sf.CohortID)
	sf.MentorID = core.CleanString(sf.MentorID)
	sf.From = core.CleanString(sf.From)
	sf.To = core.CleanString(sf.To)
}
