package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rec(student, date, status string) Record {
	return Record{ID: student + "-" + date, StudentID: student, Date: date, Status: status}
}

func TestRate(t *testing.T) {
	records := []Record{
		rec("s1", "2024-03-01", StatusPresent),
		rec("s1", "2024-03-02", StatusLate),
		rec("s1", "2024-03-03", StatusAbsent),
		rec("s2", "2024-03-01", StatusAbsent),
	}

	tests := []struct {
		name    string
		student string
		want    int
	}{
		{name: "late counts as attended", student: "s1", want: 67},
		{name: "all absent", student: "s2", want: 0},
		{name: "no records", student: "s3", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rate(tc.student, records))
		})
	}
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    int
	}{
		{
			name: "two most recent attended",
			records: []Record{
				rec("s1", "2024-03-01", StatusPresent),
				rec("s1", "2024-03-03", StatusAbsent),
				rec("s1", "2024-03-05", StatusLate),
				rec("s1", "2024-03-04", StatusPresent),
			},
			want: 2,
		},
		{
			name: "absent at latest session",
			records: []Record{
				rec("s1", "2024-03-01", StatusPresent),
				rec("s1", "2024-03-02", StatusAbsent),
			},
			want: 0,
		},
		{
			name: "other students ignored",
			records: []Record{
				rec("s1", "2024-03-01", StatusPresent),
				rec("s2", "2024-03-02", StatusAbsent),
			},
			want: 1,
		},
		{name: "no records", want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Streak("s1", tc.records))
		})
	}
}

func TestMonthlyRecords(t *testing.T) {
	records := []Record{
		rec("s1", "2024-02-28", StatusPresent),
		rec("s1", "2024-03-01", StatusPresent),
		rec("s1", "2024-03-31", StatusAbsent),
		rec("s2", "2024-03-15", StatusPresent),
		rec("s1", "not-a-date", StatusPresent),
	}

	got := MonthlyRecords("s1", records, 2024, 3)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "2024-03-01", got[0].Date)
		assert.Equal(t, "2024-03-31", got[1].Date)
	}
	assert.NotNil(t, MonthlyRecords("s1", records, 2023, 1))
	assert.Empty(t, MonthlyRecords("s1", records, 2023, 1))
}

func TestEligibility(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		academic int
		want     EligibilityResult
	}{
		{name: "both met", rate: 75, academic: 70, want: EligibilityResult{true, true, true}},
		{name: "attendance short", rate: 74, academic: 80, want: EligibilityResult{false, false, true}},
		{name: "academic short", rate: 90, academic: 69, want: EligibilityResult{false, true, false}},
		{name: "neither", rate: 0, academic: 0, want: EligibilityResult{false, false, false}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eligibility(tc.rate, tc.academic))
		})
	}

	strict := Thresholds{Attendance: 90, Academic: 80}
	assert.Equal(t, EligibilityResult{false, false, true}, strict.Eligibility(85, 80))
}
