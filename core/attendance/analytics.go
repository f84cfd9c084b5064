package attendance

import (
	"sort"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/user"
)

type CohortSummary struct {
	CohortID       string `json:"cohort_id"`
	CohortName     string `json:"cohort_name"`
	AverageRate    int    `json:"average_rate"`
	StudentCount   int    `json:"student_count"`
	BelowThreshold int    `json:"below_threshold"`
}

type MonthTrend struct {
	Month string `json:"month"` // YYYY-MM
	Rate  int    `json:"rate"`
	Total int    `json:"total"`
}

type StudentStanding struct {
	StudentID   string `json:"student_id"`
	Name        string `json:"name"`
	CohortID    string `json:"cohort_id"`
	Rate        int    `json:"rate"`
	AbsentCount int    `json:"absent_count"`
}

type Analytics struct {
	Cohorts          []CohortSummary   `json:"cohorts"`
	MonthlyTrend     []MonthTrend      `json:"monthly_trend"`
	LowestAttendance []StudentStanding `json:"lowest_attendance"`
}

// CohortSummaries averages the students' rates per cohort and counts those under threshold.
func CohortSummaries(cohorts []catalog.Cohort, students []user.User, records []Record, threshold int) []CohortSummary {
	summaries := make([]CohortSummary, 0, len(cohorts))
	for _, c := range cohorts {
		var sum, count, below int
		for _, s := range students {
			if s.CohortID != c.ID {
				continue
			}
			rate := Rate(s.ID, records)
			sum += rate
			count++
			if rate < threshold {
				below++
			}
		}
		avg := 0
		if count > 0 {
			avg = core.Round(float64(sum) / float64(count))
		}
		summaries = append(summaries, CohortSummary{
			CohortID:       c.ID,
			CohortName:     c.Name,
			AverageRate:    avg,
			StudentCount:   count,
			BelowThreshold: below,
		})
	}
	return summaries
}

// MonthlyTrend buckets sessions by month and rates the records taken at them.
func MonthlyTrend(sessions []catalog.ClassSession, records []Record) []MonthTrend {
	monthOf := make(map[string]string, len(sessions)) // session id -> YYYY-MM
	months := make(map[string]*MonthTrend)
	attended := make(map[string]int)
	for _, s := range sessions {
		if len(s.Date) < 7 {
			continue
		}
		m := s.Date[:7]
		monthOf[s.ID] = m
		if _, ok := months[m]; !ok {
			months[m] = &MonthTrend{Month: m}
		}
	}
	for _, r := range records {
		m, ok := monthOf[r.SessionID]
		if !ok {
			continue
		}
		months[m].Total++
		if r.Status != StatusAbsent {
			attended[m]++
		}
	}

	trend := make([]MonthTrend, 0, len(months))
	for m, t := range months {
		t.Rate = core.Percent(attended[m], t.Total)
		trend = append(trend, *t)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend
}

// LowestAttendance ranks students by attendance rate, lowest first, keeping at most limit.
func LowestAttendance(students []user.User, records []Record, limit int) []StudentStanding {
	standings := make([]StudentStanding, 0, len(students))
	for _, s := range students {
		var absent int
		for _, r := range records {
			if r.StudentID == s.ID && r.Status == StatusAbsent {
				absent++
			}
		}
		standings = append(standings, StudentStanding{
			StudentID:   s.ID,
			Name:        s.Name,
			CohortID:    s.CohortID,
			Rate:        Rate(s.ID, records),
			AbsentCount: absent,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool { return standings[i].Rate < standings[j].Rate })
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings
}
