package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/getskill/apps/api/echo"
	"github.com/trezcool/getskill/core/attendance"
)

func TestAttendanceApi_Mark(t *testing.T) {
	a := setup(t)
	token := a.token(t, "mentor-1")

	tests := []httpTest{
		{
			name:     "student forbidden",
			token:    a.token(t, "student-1"),
			body:     marchallObj(t, echoapi.MarkRequest{SessionID: "ses-c1-2", CohortID: "cohort-1", Mark: attendance.Mark{StudentID: "student-1", Status: attendance.StatusPresent}}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "bad status",
			token:    token,
			body:     marchallObj(t, echoapi.MarkRequest{SessionID: "ses-c1-2", CohortID: "cohort-1", Mark: attendance.Mark{StudentID: "student-1", Status: "excused"}}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "late",
			token:    token,
			body:     marchallObj(t, echoapi.MarkRequest{SessionID: "ses-c1-2", CohortID: "cohort-1", Mark: attendance.Mark{StudentID: "student-1", Status: attendance.StatusLate, Note: "bus"}}),
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/v1/attendance/mark", tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
			if rec.Code != http.StatusOK {
				return
			}
			var got attendance.Record
			unmarshal(t, rec, &got)
			assert.Equal(t, "ses-c1-2", got.SessionID)
			assert.Equal(t, attendance.StatusLate, got.Status)
			assert.Equal(t, "mentor-1", got.MarkedBy)
			assert.Equal(t, "bus", got.Note)
		})
	}
}

func TestAttendanceApi_Bulk(t *testing.T) {
	a := setup(t)
	token := a.token(t, "admin-1")

	// one bad mark rejects the whole batch
	body := marchallObj(t, attendance.BulkMark{
		SessionID: "ses-c1-2",
		CohortID:  "cohort-1",
		Marks: []attendance.Mark{
			{StudentID: "student-1", Status: attendance.StatusAbsent},
			{StudentID: "", Status: attendance.StatusPresent},
		},
	})
	rec := a.do(http.MethodPost, "/v1/attendance/bulk", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, a.Store.Saves())

	body = marchallObj(t, attendance.MarkAllPresent{SessionID: "ses-c2-3", CohortID: "cohort-2"})
	rec = a.do(http.MethodPost, "/v1/attendance/all-present", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var recs []attendance.Record
	unmarshal(t, rec, &recs)
	assert.Len(t, recs, 8)
	for _, r := range recs {
		assert.Equal(t, attendance.StatusPresent, r.Status)
	}
}

func TestAttendanceApi_CheckIn(t *testing.T) {
	a := setup(t)

	rec := a.do(http.MethodPost, "/v1/attendance/check-in", a.token(t, "mentor-1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/v1/attendance/check-in", a.token(t, "student-2"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got attendance.Record
	unmarshal(t, rec, &got)
	assert.Equal(t, "ses-c1-6", got.SessionID)
	assert.Equal(t, attendance.MarkedByQRScan, got.MarkedBy)
}

func TestAttendanceApi_StudentSummary(t *testing.T) {
	a := setup(t)

	tests := []struct {
		name         string
		token        string
		path         string
		wantCode     int
		wantRate     int
		wantEligible bool
	}{
		{name: "own summary", token: a.token(t, "student-1"), path: "/v1/attendance/students/student-1", wantCode: http.StatusOK, wantRate: 100, wantEligible: true},
		{name: "another student", token: a.token(t, "student-1"), path: "/v1/attendance/students/student-8", wantCode: http.StatusNotFound},
		{name: "staff", token: a.token(t, "mentor-2"), path: "/v1/attendance/students/student-8", wantCode: http.StatusOK, wantRate: 50},
		{name: "unknown student", token: a.token(t, "admin-1"), path: "/v1/attendance/students/student-404", wantCode: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, tc.path, tc.token)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantCode != http.StatusOK {
				return
			}
			var got attendance.StudentSummary
			unmarshal(t, rec, &got)
			assert.Equal(t, tc.wantRate, got.Rate)
			assert.Equal(t, tc.wantEligible, got.Eligibility.Eligible)
		})
	}
}

func TestAttendanceApi_Analytics(t *testing.T) {
	a := setup(t)

	rec := a.do(http.MethodGet, "/v1/attendance/analytics", a.token(t, "admin-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var got attendance.Analytics
	unmarshal(t, rec, &got)
	assert.Len(t, got.Cohorts, 3)
	require.NotEmpty(t, got.LowestAttendance)
	assert.Equal(t, 50, got.LowestAttendance[0].Rate)
}
