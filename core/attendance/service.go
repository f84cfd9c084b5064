package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/user"
)

var (
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrSessionNotFound = catalog.ErrSessionNotFound

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// GetRecord finds the record of a student at a session.
		GetRecord(ctx context.Context, sessionID, studentID string) (Record, error)
		// SaveRecord inserts r, or replaces the record with the same session and student.
		SaveRecord(ctx context.Context, r Record) (Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	// GradeSource provides a student's academic score.
	GradeSource interface {
		AverageGrade(ctx context.Context, studentID string) (int, error)
	}

	// TaskProgress provides a student's task completion rate.
	TaskProgress interface {
		CompletionRate(ctx context.Context, studentID string) (int, error)
	}

	Service interface {
		Mark(ctx context.Context, sessionID, cohortID string, m Mark, markedBy string) (Record, error)
		BulkMark(ctx context.Context, bm BulkMark, markedBy string) ([]Record, error)
		MarkAllPresent(ctx context.Context, mp MarkAllPresent, markedBy string) ([]Record, error)
		CheckIn(ctx context.Context, student user.User) (Record, error)
		Records(ctx context.Context, filter QueryFilter) ([]Record, error)
		StudentSummary(ctx context.Context, studentID string) (StudentSummary, error)
		Analytics(ctx context.Context) (Analytics, error)
	}

	StudentSummary struct {
		StudentID      string            `json:"student_id"`
		Rate           int               `json:"rate"`
		Streak         int               `json:"streak"`
		Sessions       int               `json:"sessions"`
		Attended       int               `json:"attended"`
		AcademicScore  int               `json:"academic_score"`
		TaskCompletion int               `json:"task_completion"`
		Eligibility    EligibilityResult `json:"eligibility"`
		ThisMonth      []Record          `json:"this_month"`
	}

	service struct {
		conf       core.AttendanceConfig
		repo       Repository
		usrRepo    user.Repository
		catalogSvc catalog.Service
		grades     GradeSource
		progress   TaskProgress
		uow        core.UnitOfWork
		validate   *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	usrRepo user.Repository,
	catalogSvc catalog.Service,
	grades GradeSource,
	progress TaskProgress,
	uow core.UnitOfWork,
	validate *validator.Validate,
) Service {
	return &service{
		conf:       conf.Attendance,
		repo:       repo,
		usrRepo:    usrRepo,
		catalogSvc: catalogSvc,
		grades:     grades,
		progress:   progress,
		uow:        uow,
		validate:   validate,
	}
}

func (svc *service) thresholds() Thresholds {
	t := DefaultThresholds
	if svc.conf.Threshold > 0 {
		t.Attendance = svc.conf.Threshold
	}
	if svc.conf.AcademicThreshold > 0 {
		t.Academic = svc.conf.AcademicThreshold
	}
	return t
}

// session finds the session and checks it belongs to cohortID; an empty cohortID means the session's own.
func (svc *service) session(ctx context.Context, sessionID, cohortID string) (catalog.ClassSession, error) {
	ses, err := svc.catalogSvc.Session(ctx, sessionID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrSessionNotFound {
			return catalog.ClassSession{}, core.NewFieldError("session_id", "session not found")
		}
		return catalog.ClassSession{}, errors.Wrap(err, "getting session")
	}
	if cohortID != "" && cohortID != ses.CohortID {
		return catalog.ClassSession{}, core.NewFieldError("cohort_id", "session does not belong to this cohort")
	}
	return ses, nil
}

func (svc *service) checkStudent(ctx context.Context, studentID, cohortID string) error {
	usr, err := svc.usrRepo.GetUser(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewFieldError("student_id", fmt.Sprintf("student %s not found", studentID))
		}
		return errors.Wrap(err, "getting student")
	}
	if !usr.IsStudent() || usr.CohortID != cohortID {
		return core.NewFieldError("student_id", fmt.Sprintf("%s is not a student of this cohort", studentID))
	}
	return nil
}

// mark upserts the record of (session, student). Existing records keep their id, date and note
// unless a new note is given; new records are dated today.
func (svc *service) mark(ctx context.Context, ses catalog.ClassSession, m Mark, markedBy string, now time.Time) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, ses.ID, m.StudentID)
	switch {
	case err == nil:
		rec.Status = m.Status
		rec.MarkedBy = markedBy
		rec.MarkedAt = now
		if m.Note != "" {
			rec.Note = m.Note
		}
	case errors.Cause(err) == ErrRecordNotFound:
		rec = Record{
			ID:        fmt.Sprintf("att-%s-%s-%d", ses.ID, m.StudentID, now.UnixNano()/int64(time.Millisecond)),
			SessionID: ses.ID,
			StudentID: m.StudentID,
			CohortID:  ses.CohortID,
			Date:      core.Today(now),
			Status:    m.Status,
			MarkedBy:  markedBy,
			MarkedAt:  now,
			Note:      m.Note,
		}
	default:
		return Record{}, errors.Wrap(err, "getting attendance record")
	}
	return svc.repo.SaveRecord(ctx, rec)
}

func (svc *service) Mark(ctx context.Context, sessionID, cohortID string, m Mark, markedBy string) (Record, error) {
	recs, err := svc.BulkMark(ctx, BulkMark{SessionID: sessionID, CohortID: cohortID, Marks: []Mark{m}}, markedBy)
	if err != nil {
		return Record{}, err
	}
	return recs[0], nil
}

// BulkMark marks every entry or, when one of them is invalid, none.
func (svc *service) BulkMark(ctx context.Context, bm BulkMark, markedBy string) ([]Record, error) {
	if err := bm.Validate(svc.validate); err != nil {
		return nil, err
	}
	markedBy = core.CleanString(markedBy)
	if markedBy == "" {
		return nil, core.NewFieldError("marked_by", "marked by is required")
	}

	var recs []Record
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		ses, err := svc.session(ctx, bm.SessionID, bm.CohortID)
		if err != nil {
			return err
		}
		for _, m := range bm.Marks {
			if err = svc.checkStudent(ctx, m.StudentID, ses.CohortID); err != nil {
				return err
			}
		}

		now := nowFunc().UTC()
		recs = make([]Record, 0, len(bm.Marks))
		for _, m := range bm.Marks {
			rec, err := svc.mark(ctx, ses, m, markedBy, now)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

func (svc *service) MarkAllPresent(ctx context.Context, mp MarkAllPresent, markedBy string) ([]Record, error) {
	if err := mp.Validate(svc.validate); err != nil {
		return nil, err
	}

	studentIDs := mp.StudentIDs
	if len(studentIDs) == 0 {
		ses, err := svc.session(ctx, mp.SessionID, mp.CohortID)
		if err != nil {
			return nil, err
		}
		active := true
		students, err := svc.usrRepo.QueryUsers(ctx, user.QueryFilter{
			Roles:    []string{user.RoleStudent},
			CohortID: ses.CohortID,
			IsActive: &active,
		})
		if err != nil {
			return nil, errors.Wrap(err, "querying cohort students")
		}
		for _, s := range students {
			studentIDs = append(studentIDs, s.ID)
		}
		if len(studentIDs) == 0 {
			return []Record{}, nil
		}
	}

	bm := BulkMark{SessionID: mp.SessionID, CohortID: mp.CohortID, Marks: make([]Mark, 0, len(studentIDs))}
	for _, id := range studentIDs {
		bm.Marks = append(bm.Marks, Mark{StudentID: id, Status: StatusPresent})
	}
	return svc.BulkMark(ctx, bm, markedBy)
}

// CheckIn marks the student present at the latest session of their cohort.
func (svc *service) CheckIn(ctx context.Context, student user.User) (Record, error) {
	if !student.IsStudent() || student.CohortID == "" {
		return Record{}, core.NewValidationError(errors.New("only students enrolled in a cohort can check in"))
	}
	ses, err := svc.catalogSvc.LatestSession(ctx, student.CohortID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrSessionNotFound {
			return Record{}, core.NewValidationError(errors.New("no session to check in to"))
		}
		return Record{}, errors.Wrap(err, "getting latest session")
	}
	return svc.Mark(ctx, ses.ID, ses.CohortID, Mark{StudentID: student.ID, Status: StatusPresent}, MarkedByQRScan)
}

func (svc *service) Records(ctx context.Context, filter QueryFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.QueryRecords(ctx, filter)
}

func (svc *service) StudentSummary(ctx context.Context, studentID string) (StudentSummary, error) {
	studentID = core.CleanString(studentID)
	summary := StudentSummary{StudentID: studentID}

	err := svc.uow.View(ctx, func(ctx context.Context) error {
		if _, err := svc.usrRepo.GetUser(ctx, studentID); err != nil {
			return err
		}
		recs, err := svc.repo.QueryRecords(ctx, QueryFilter{StudentID: studentID})
		if err != nil {
			return err
		}
		if summary.AcademicScore, err = svc.grades.AverageGrade(ctx, studentID); err != nil {
			return errors.Wrap(err, "computing academic score")
		}
		if summary.TaskCompletion, err = svc.progress.CompletionRate(ctx, studentID); err != nil {
			return errors.Wrap(err, "computing task completion")
		}

		now := nowFunc().UTC()
		summary.Rate = Rate(studentID, recs)
		summary.Streak = Streak(studentID, recs)
		summary.Sessions = len(recs)
		for _, r := range recs {
			if r.Attended() {
				summary.Attended++
			}
		}
		summary.ThisMonth = MonthlyRecords(studentID, recs, now.Year(), int(now.Month()))
		summary.Eligibility = svc.thresholds().Eligibility(summary.Rate, summary.AcademicScore)
		return nil
	})
	return summary, err
}

func (svc *service) Analytics(ctx context.Context) (Analytics, error) {
	var out Analytics
	err := svc.uow.View(ctx, func(ctx context.Context) error {
		cohorts, err := svc.catalogSvc.Cohorts(ctx)
		if err != nil {
			return err
		}
		sessions, err := svc.catalogSvc.Sessions(ctx, catalog.SessionFilter{})
		if err != nil {
			return err
		}
		students, err := svc.usrRepo.QueryUsers(ctx, user.QueryFilter{Roles: []string{user.RoleStudent}})
		if err != nil {
			return err
		}
		recs, err := svc.repo.QueryRecords(ctx, QueryFilter{})
		if err != nil {
			return err
		}

		limit := svc.conf.TopAbsentees
		if limit <= 0 {
			limit = 8
		}
		out = Analytics{
			Cohorts:          CohortSummaries(cohorts, students, recs, svc.thresholds().Attendance),
			MonthlyTrend:     MonthlyTrend(sessions, recs),
			LowestAttendance: LowestAttendance(students, recs, limit),
		}
		return nil
	})
	return out, err
}
