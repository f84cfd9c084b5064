package attendance

import (
	"sort"

	"github.com/trezcool/getskill/core"
)

// Default eligibility thresholds, in percent.
const (
	DefaultThreshold         = 75
	DefaultAcademicThreshold = 70
)

type Thresholds struct {
	Attendance int
	Academic   int
}

var DefaultThresholds = Thresholds{Attendance: DefaultThreshold, Academic: DefaultAcademicThreshold}

type EligibilityResult struct {
	Eligible     bool `json:"eligible"`
	AttendanceOK bool `json:"attendance_ok"`
	AcademicOK   bool `json:"academic_ok"`
}

func forStudent(studentID string, records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}

// Rate returns the student's attendance in percent, 0 when the student has no record.
func Rate(studentID string, records []Record) int {
	var total, attended int
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		total++
		if r.Attended() {
			attended++
		}
	}
	return core.Percent(attended, total)
}

// Streak counts the student's consecutive attended sessions, most recent first.
func Streak(studentID string, records []Record) int {
	own := forStudent(studentID, records)
	sort.SliceStable(own, func(i, j int) bool { return own[i].Date > own[j].Date })

	var streak int
	for _, r := range own {
		if !r.Attended() {
			break
		}
		streak++
	}
	return streak
}

// MonthlyRecords returns the student's records dated in the given month.
func MonthlyRecords(studentID string, records []Record, year, month int) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.StudentID != studentID {
			continue
		}
		d, err := core.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if d.Year() == year && int(d.Month()) == month {
			out = append(out, r)
		}
	}
	return out
}

// Eligibility applies the default thresholds: internship and certificate eligibility needs
// both the attendance rate and the academic score to reach them.
func Eligibility(rate, academic int) EligibilityResult {
	return DefaultThresholds.Eligibility(rate, academic)
}

func (t Thresholds) Eligibility(rate, academic int) EligibilityResult {
	attendanceOK := rate >= t.Attendance
	academicOK := academic >= t.Academic
	return EligibilityResult{
		Eligible:     attendanceOK && academicOK,
		AttendanceOK: attendanceOK,
		AcademicOK:   academicOK,
	}
}
