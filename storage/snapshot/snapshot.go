package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/notification"
	"github.com/trezcool/getskill/core/review"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
)

// Collection keys
const (
	KeyTasks         = "gs_tasks"
	KeySubmissions   = "gs_submissions"
	KeyReviews       = "gs_reviews"
	KeyNotifications = "gs_notifications"
	KeyDeliverables  = "gs_deliverables"
	KeyAttendance    = "gs_attendance"
	KeyUsers         = "gs_users"
)

var Keys = []string{KeyTasks, KeySubmissions, KeyReviews, KeyNotifications, KeyDeliverables, KeyAttendance, KeyUsers}

type (
	// Snapshot holds every mutable collection.
	Snapshot struct {
		Tasks         []task.Task                 `json:"tasks"`
		Submissions   []review.Submission         `json:"submissions"`
		Reviews       []review.Review             `json:"reviews"`
		Notifications []notification.Notification `json:"notifications"`
		Deliverables  []review.Deliverable        `json:"deliverables"`
		Attendance    []attendance.Record         `json:"attendance"`
		Users         []User                      `json:"users"`
	}

	// User is the stored form of user.User, which hides its password hash from JSON.
	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		Avatar       string    `json:"avatar,omitempty"`
		CohortID     string    `json:"cohort_id,omitempty"`
		IsActive     bool      `json:"is_active"`
		PasswordHash string    `json:"password_hash"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
		LastLogin    time.Time `json:"last_login"`
	}

	// Store persists the encoded collections under their keys.
	Store interface {
		// Load returns the stored collections; keys never saved are absent.
		Load(ctx context.Context) (map[string][]byte, error)
		Save(ctx context.Context, data map[string][]byte) error
		Close() error
	}
)

func FromUser(u user.User) User {
	return User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Avatar:       u.Avatar,
		CohortID:     u.CohortID,
		IsActive:     u.IsActive,
		PasswordHash: string(u.PasswordHash),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin,
	}
}

func (u User) ToUser() user.User {
	usr := user.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CohortID:  u.CohortID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
	if u.PasswordHash != "" {
		usr.PasswordHash = []byte(u.PasswordHash)
	}
	return usr
}

func (s *Snapshot) fields() map[string]interface{} {
	return map[string]interface{}{
		KeyTasks:         &s.Tasks,
		KeySubmissions:   &s.Submissions,
		KeyReviews:       &s.Reviews,
		KeyNotifications: &s.Notifications,
		KeyDeliverables:  &s.Deliverables,
		KeyAttendance:    &s.Attendance,
		KeyUsers:         &s.Users,
	}
}

// Encode serialises each collection to JSON under its key.
func Encode(s Snapshot) (map[string][]byte, error) {
	fields := s.fields()
	data := make(map[string][]byte, len(fields))
	for key, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", key)
		}
		data[key] = b
	}
	return data, nil
}

// Decode rebuilds a snapshot from stored collections. Collections missing from data are
// taken from fallback; any malformed collection fails the whole decode.
func Decode(data map[string][]byte, fallback Snapshot) (Snapshot, error) {
	var snap Snapshot
	for key, v := range snap.fields() {
		if len(data[key]) == 0 {
			continue
		}
		if err := json.Unmarshal(data[key], v); err != nil {
			return Snapshot{}, errors.Wrapf(err, "decoding %s", key)
		}
	}

	missing := func(key string) bool { return len(data[key]) == 0 }
	if missing(KeyTasks) {
		snap.Tasks = fallback.Tasks
	}
	if missing(KeySubmissions) {
		snap.Submissions = fallback.Submissions
	}
	if missing(KeyReviews) {
		snap.Reviews = fallback.Reviews
	}
	if missing(KeyNotifications) {
		snap.Notifications = fallback.Notifications
	}
	if missing(KeyDeliverables) {
		snap.Deliverables = fallback.Deliverables
	}
	if missing(KeyAttendance) {
		snap.Attendance = fallback.Attendance
	}
	if missing(KeyUsers) {
		snap.Users = fallback.Users
	}
	return snap, nil
}
