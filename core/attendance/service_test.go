package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/user"
	testutil "github.com/trezcool/getskill/tests"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	verr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "expected a validation error, got %v", err)
	require.NotEmpty(t, verr.Fields)
	return verr.Fields[0].Field
}

func TestService_Mark_upsert(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	before, err := env.AttendanceSvc.Records(ctx, attendance.QueryFilter{SessionID: "ses-c1-6", StudentID: "student-1"})
	require.NoError(t, err)
	require.Len(t, before, 1)

	first, err := env.AttendanceSvc.Mark(ctx, "ses-c1-6", "cohort-1", attendance.Mark{StudentID: "student-1", Status: "Late", Note: "Bus strike"}, "mentor-1")
	require.NoError(t, err)
	second, err := env.AttendanceSvc.Mark(ctx, "ses-c1-6", "", attendance.Mark{StudentID: "student-1", Status: attendance.StatusAbsent}, "mentor-2")
	require.NoError(t, err)

	after, err := env.AttendanceSvc.Records(ctx, attendance.QueryFilter{SessionID: "ses-c1-6", StudentID: "student-1"})
	require.NoError(t, err)
	require.Len(t, after, 1)

	rec := after[0]
	assert.Equal(t, before[0].ID, rec.ID)
	assert.Equal(t, before[0].Date, rec.Date)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Equal(t, "mentor-2", rec.MarkedBy)
	assert.Equal(t, "Bus strike", rec.Note)
	assert.False(t, rec.MarkedAt.Before(first.MarkedAt))
	assert.Equal(t, second.MarkedAt, rec.MarkedAt)
	assert.Equal(t, 2, env.Store.Saves())
}

func TestService_Mark_newRecord(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	newbie := testutil.CreateUser(t, env.UserRepo, "Meera Das", "meera@getskill.in", "", user.RoleStudent, "cohort-1", true)

	rec, err := env.AttendanceSvc.Mark(ctx, "ses-c1-2", "cohort-1", attendance.Mark{StudentID: newbie.ID, Status: attendance.StatusPresent}, "mentor-1")
	require.NoError(t, err)
	assert.Contains(t, rec.ID, "att-ses-c1-2-"+newbie.ID+"-")
	assert.Equal(t, "cohort-1", rec.CohortID)
	assert.Equal(t, core.Today(time.Now().UTC()), rec.Date)
	assert.Equal(t, "mentor-1", rec.MarkedBy)
}

func TestService_Mark_invalid(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		cohortID  string
		mark      attendance.Mark
		markedBy  string
		field     string
	}{
		{"unknown session", "ses-404", "", attendance.Mark{StudentID: "student-1", Status: "present"}, "mentor-1", "session_id"},
		{"cohort mismatch", "ses-c1-1", "cohort-2", attendance.Mark{StudentID: "student-1", Status: "present"}, "mentor-1", "cohort_id"},
		{"student of another cohort", "ses-c1-1", "", attendance.Mark{StudentID: "student-9", Status: "present"}, "mentor-1", "student_id"},
		{"not a student", "ses-c1-1", "", attendance.Mark{StudentID: "mentor-1", Status: "present"}, "mentor-1", "student_id"},
		{"unknown student", "ses-c1-1", "", attendance.Mark{StudentID: "student-404", Status: "present"}, "mentor-1", "student_id"},
		{"no marker", "ses-c1-1", "", attendance.Mark{StudentID: "student-1", Status: "present"}, " ", "marked_by"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			_, err := env.AttendanceSvc.Mark(context.Background(), tc.sessionID, tc.cohortID, tc.mark, tc.markedBy)
			require.Error(t, err)
			assert.Equal(t, tc.field, fieldOf(t, err))
			assert.Equal(t, 0, env.Store.Saves())
		})
	}

	t.Run("bad status", func(t *testing.T) {
		env := testutil.NewEnv(t)
		_, err := env.AttendanceSvc.Mark(context.Background(), "ses-c1-1", "", attendance.Mark{StudentID: "student-1", Status: "sick"}, "mentor-1")
		require.Error(t, err)
		assert.Equal(t, 0, env.Store.Saves())
	})
}

func TestService_BulkMark_allOrNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	before := env.DB.Export()

	_, err := env.AttendanceSvc.BulkMark(ctx, attendance.BulkMark{
		SessionID: "ses-c1-3",
		Marks: []attendance.Mark{
			{StudentID: "student-1", Status: attendance.StatusAbsent},
			{StudentID: "student-9", Status: attendance.StatusAbsent},
		},
	}, "mentor-1")
	require.Error(t, err)
	assert.Equal(t, "student_id", fieldOf(t, err))
	assert.Equal(t, before, env.DB.Export())

	recs, err := env.AttendanceSvc.BulkMark(ctx, attendance.BulkMark{
		SessionID: "ses-c1-3",
		CohortID:  "cohort-1",
		Marks: []attendance.Mark{
			{StudentID: "student-1", Status: attendance.StatusAbsent},
			{StudentID: "student-2", Status: attendance.StatusLate},
		},
	}, "mentor-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, attendance.StatusAbsent, recs[0].Status)
	assert.Equal(t, attendance.StatusLate, recs[1].Status)
	assert.Equal(t, 1, env.Store.Saves())
}

func TestService_MarkAllPresent(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	recs, err := env.AttendanceSvc.MarkAllPresent(ctx, attendance.MarkAllPresent{SessionID: "ses-c2-3"}, "mentor-4")
	require.NoError(t, err)
	assert.Len(t, recs, 8)
	for _, r := range recs {
		assert.Equal(t, attendance.StatusPresent, r.Status)
		assert.Equal(t, "cohort-2", r.CohortID)
	}

	absent, err := env.AttendanceSvc.Records(ctx, attendance.QueryFilter{SessionID: "ses-c2-3", Status: attendance.StatusAbsent})
	require.NoError(t, err)
	assert.Empty(t, absent)

	some, err := env.AttendanceSvc.MarkAllPresent(ctx, attendance.MarkAllPresent{
		SessionID:  "ses-c3-1",
		StudentIDs: []string{"student-22", "student-24"},
	}, "mentor-5")
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestService_CheckIn(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	rec, err := env.AttendanceSvc.CheckIn(ctx, env.User(t, "student-2"))
	require.NoError(t, err)
	assert.Equal(t, "ses-c1-6", rec.SessionID)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, attendance.MarkedByQRScan, rec.MarkedBy)

	_, err = env.AttendanceSvc.CheckIn(ctx, env.User(t, "mentor-1"))
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
}

func TestService_StudentSummary(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	tests := []struct {
		studentID string
		want      attendance.StudentSummary
	}{
		{
			studentID: "student-1",
			want: attendance.StudentSummary{
				StudentID: "student-1", Rate: 100, Streak: 6, Sessions: 6, Attended: 6,
				AcademicScore: 86, TaskCompletion: 50,
				Eligibility: attendance.EligibilityResult{Eligible: true, AttendanceOK: true, AcademicOK: true},
			},
		},
		{
			studentID: "student-8",
			want: attendance.StudentSummary{
				StudentID: "student-8", Rate: 50, Streak: 3, Sessions: 6, Attended: 3,
				Eligibility: attendance.EligibilityResult{},
			},
		},
		{
			studentID: "student-17",
			want: attendance.StudentSummary{
				StudentID: "student-17", Rate: 100, Streak: 6, Sessions: 6, Attended: 6,
				AcademicScore: 61,
				Eligibility:   attendance.EligibilityResult{AttendanceOK: true},
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.studentID, func(t *testing.T) {
			got, err := env.AttendanceSvc.StudentSummary(ctx, tc.studentID)
			require.NoError(t, err)
			got.ThisMonth = nil
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := env.AttendanceSvc.StudentSummary(ctx, "student-404")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_Analytics(t *testing.T) {
	env := testutil.NewEnv(t)

	a, err := env.AttendanceSvc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Len(t, a.Cohorts, 3)
	assert.Len(t, a.MonthlyTrend, 3)
	require.Len(t, a.LowestAttendance, 8)
	assert.Equal(t, 50, a.LowestAttendance[0].Rate)
	for i := 1; i < len(a.LowestAttendance); i++ {
		assert.LessOrEqual(t, a.LowestAttendance[i-1].Rate, a.LowestAttendance[i].Rate)
	}
}
