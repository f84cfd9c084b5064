package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/getskill/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// MarkedByQRScan identifies records a student created by checking in themselves.
const MarkedByQRScan = "qr-scan"

// Record is one student's attendance at one class session.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	SessionID string    `json:"session_id" yaml:"sessionId"`
	StudentID string    `json:"student_id" yaml:"studentId"`
	CohortID  string    `json:"cohort_id" yaml:"cohortId"`
	Date      string    `json:"date" yaml:"date"` // YYYY-MM-DD
	Status    string    `json:"status" yaml:"status"`
	MarkedBy  string    `json:"marked_by" yaml:"markedBy"`
	MarkedAt  time.Time `json:"marked_at" yaml:"markedAt"`
	Note      string    `json:"note,omitempty" yaml:"note"`
}

// Attended reports whether the student was there, late counting as attended.
func (r Record) Attended() bool {
	return r.Status == StatusPresent || r.Status == StatusLate
}

// Mark is one student's status in a marking request.
type Mark struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present late absent"`
	Note      string `json:"note" validate:"max=500"`
}

// BulkMark marks several students of a cohort for one session.
type BulkMark struct {
	SessionID string `json:"session_id" validate:"required"`
	CohortID  string `json:"cohort_id"`
	Marks     []Mark `json:"records" validate:"required,min=1,dive"`
}

func (bm *BulkMark) Validate(validate *validator.Validate) error {
	bm.SessionID = core.CleanString(bm.SessionID)
	bm.CohortID = core.CleanString(bm.CohortID)
	for i := range bm.Marks {
		bm.Marks[i].StudentID = core.CleanString(bm.Marks[i].StudentID)
		bm.Marks[i].Status = core.CleanString(bm.Marks[i].Status, true /* lower */)
		bm.Marks[i].Note = core.CleanString(bm.Marks[i].Note)
	}
	return validate.Struct(bm)
}

// MarkAllPresent marks the listed students present. An empty list means the whole cohort.
type MarkAllPresent struct {
	SessionID  string   `json:"session_id" validate:"required"`
	CohortID   string   `json:"cohort_id"`
	StudentIDs []string `json:"student_ids"`
}

func (mp *MarkAllPresent) Validate(validate *validator.Validate) error {
	mp.SessionID = core.CleanString(mp.SessionID)
	mp.CohortID = core.CleanString(mp.CohortID)
	mp.StudentIDs = core.CleanStrings(mp.StudentIDs)
	return validate.Struct(mp)
}

type QueryFilter struct {
	SessionID string `query:"session_id"`
	StudentID string `query:"student_id"`
	CohortID  string `query:"cohort_id"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.SessionID = core.CleanString(qf.SessionID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.CohortID = core.CleanString(qf.CohortID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

func (qf QueryFilter) Match(r Record) bool {
	return (qf.SessionID == "" || r.SessionID == qf.SessionID) &&
		(qf.StudentID == "" || r.StudentID == qf.StudentID) &&
		(qf.CohortID == "" || r.CohortID == qf.CohortID) &&
		(qf.Status == "" || r.Status == qf.Status)
}
