package snapshot

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/notification"
	"github.com/trezcool/getskill/core/review"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
	"github.com/trezcool/getskill/fs"
)

const seedPath = "seed/seed.yaml"

var (
	planStatuses = map[rune]string{
		'P': attendance.StatusPresent,
		'L': attendance.StatusLate,
		'A': attendance.StatusAbsent,
	}
	planNotes = map[string]string{
		attendance.StatusAbsent: "No notice received",
		attendance.StatusLate:   "Arrived 20 min late",
	}

	// bcrypt is slow; seeded accounts share a few passwords.
	hashes   = make(map[string][]byte)
	hashesMu sync.Mutex
)

type (
	// Seed is the initial data set: the mutable collections plus the read-only catalog.
	Seed struct {
		Snapshot
		Cohorts     []catalog.Cohort
		Workstreams []catalog.Workstream
		Projects    []catalog.Project
		Sessions    []catalog.ClassSession
	}

	seedFile struct {
		DefaultPassword string                      `yaml:"defaultPassword"`
		Users           []seedUser                  `yaml:"users"`
		Cohorts         []catalog.Cohort            `yaml:"cohorts"`
		Workstreams     []catalog.Workstream        `yaml:"workstreams"`
		Projects        []catalog.Project           `yaml:"projects"`
		Deliverables    []review.Deliverable        `yaml:"deliverables"`
		Sessions        []catalog.ClassSession      `yaml:"sessions"`
		Tasks           []task.Task                 `yaml:"tasks"`
		Submissions     []review.Submission         `yaml:"submissions"`
		Reviews         []review.Review             `yaml:"reviews"`
		Notifications   []notification.Notification `yaml:"notifications"`
		Attendance      []attendancePlan            `yaml:"attendance"`
	}

	seedUser struct {
		ID        string    `yaml:"id"`
		Name      string    `yaml:"name"`
		Email     string    `yaml:"email"`
		Role      string    `yaml:"role"`
		Avatar    string    `yaml:"avatar"`
		CohortID  string    `yaml:"cohortId"`
		Password  string    `yaml:"password"`
		Inactive  bool      `yaml:"inactive"`
		CreatedAt time.Time `yaml:"createdAt"`
	}

	// attendancePlan lists, per student, one letter per cohort session in date order.
	attendancePlan struct {
		CohortID string        `yaml:"cohortId"`
		MarkedBy string        `yaml:"markedBy"`
		Plans    yaml.MapSlice `yaml:"plans"`
	}
)

// LoadSeed parses the embedded seed data.
func LoadSeed() (*Seed, error) {
	b, err := appfs.FS.ReadFile(seedPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading seed")
	}
	return ParseSeed(b)
}

// ParseSeed parses seed data in the embedded seed format.
func ParseSeed(b []byte) (*Seed, error) {
	var sf seedFile
	if err := yaml.UnmarshalStrict(b, &sf); err != nil {
		return nil, errors.Wrap(err, "parsing seed")
	}

	users, err := sf.users()
	if err != nil {
		return nil, err
	}
	records, err := sf.attendance()
	if err != nil {
		return nil, err
	}

	notifs := sf.Notifications
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })

	return &Seed{
		Snapshot: Snapshot{
			Tasks:         sf.Tasks,
			Submissions:   sf.Submissions,
			Reviews:       sf.Reviews,
			Notifications: notifs,
			Deliverables:  sf.Deliverables,
			Attendance:    records,
			Users:         users,
		},
		Cohorts:     sf.Cohorts,
		Workstreams: sf.Workstreams,
		Projects:    sf.Projects,
		Sessions:    sf.Sessions,
	}, nil
}

func hashPassword(pwd string) ([]byte, error) {
	hashesMu.Lock()
	defer hashesMu.Unlock()

	if hash, ok := hashes[pwd]; ok {
		return hash, nil
	}
	var usr user.User
	if err := usr.SetPassword(pwd); err != nil {
		return nil, err
	}
	hashes[pwd] = usr.PasswordHash
	return usr.PasswordHash, nil
}

func (sf seedFile) users() ([]User, error) {
	users := make([]User, 0, len(sf.Users))
	for _, su := range sf.Users {
		pwd := su.Password
		if pwd == "" {
			pwd = sf.DefaultPassword
		}
		if pwd == "" {
			return nil, errors.Errorf("seed user %s has no password", su.ID)
		}
		hash, err := hashPassword(pwd)
		if err != nil {
			return nil, errors.Wrapf(err, "hashing password of %s", su.ID)
		}

		users = append(users, User{
			ID:           su.ID,
			Name:         su.Name,
			Email:        core.CleanString(su.Email, true /* lower */),
			Role:         su.Role,
			Avatar:       su.Avatar,
			CohortID:     su.CohortID,
			IsActive:     !su.Inactive,
			PasswordHash: string(hash),
			CreatedAt:    su.CreatedAt.UTC(),
			UpdatedAt:    su.CreatedAt.UTC(),
		})
	}
	return users, nil
}

func (sf seedFile) attendance() ([]attendance.Record, error) {
	var records []attendance.Record
	for _, plan := range sf.Attendance {
		sessions := make([]catalog.ClassSession, 0)
		for _, s := range sf.Sessions {
			if s.CohortID == plan.CohortID {
				sessions = append(sessions, s)
			}
		}
		sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date < sessions[j].Date })

		for _, item := range plan.Plans {
			studentID := fmt.Sprint(item.Key)
			letters := []rune(fmt.Sprint(item.Value))
			if len(letters) > len(sessions) {
				return nil, errors.Errorf("attendance plan of %s has %d entries for %d sessions", studentID, len(letters), len(sessions))
			}

			for i, l := range letters {
				status, ok := planStatuses[l]
				if !ok {
					return nil, errors.Errorf("attendance plan of %s: unknown status %q", studentID, l)
				}
				ses := sessions[i]
				day, err := core.ParseDate(ses.Date)
				if err != nil {
					return nil, errors.Wrapf(err, "session %s", ses.ID)
				}

				records = append(records, attendance.Record{
					ID:        fmt.Sprintf("att-%s-%s-%d", plan.CohortID, studentID, i+1),
					SessionID: ses.ID,
					StudentID: studentID,
					CohortID:  plan.CohortID,
					Date:      ses.Date,
					Status:    status,
					MarkedBy:  plan.MarkedBy,
					MarkedAt:  day.Add(9*time.Hour + 5*time.Minute),
					Note:      planNotes[status],
				})
			}
		}
	}
	return records, nil
}
