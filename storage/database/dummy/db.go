package dummydb

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/notification"
	"github.com/trezcool/getskill/core/review"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
	"github.com/trezcool/getskill/storage/snapshot"
)

type (
	// DB keeps every collection in memory and persists a snapshot of the mutable ones
	// after each committed unit of work.
	DB struct {
		mu     sync.RWMutex // unit of work
		store  snapshot.Store
		logger core.Logger
		seed   *snapshot.Seed

		user         *userTable
		task         *taskTable
		submission   *submissionTable
		deliverable  *deliverableTable
		review       *reviewTable
		notification *notificationTable
		attendance   *attendanceTable

		cohorts     []catalog.Cohort
		workstreams []catalog.Workstream
		projects    []catalog.Project
		sessions    []catalog.ClassSession
	}

	userTable struct {
		sync.RWMutex
		rows []user.User
	}

	taskTable struct {
		sync.RWMutex
		rows []task.Task
	}

	submissionTable struct {
		sync.RWMutex
		rows []review.Submission
	}

	deliverableTable struct {
		sync.RWMutex
		rows []review.Deliverable
	}

	reviewTable struct {
		sync.RWMutex
		rows []review.Review
	}

	notificationTable struct {
		sync.RWMutex
		rows []notification.Notification
	}

	attendanceTable struct {
		sync.RWMutex
		rows []attendance.Record
	}

	uowKey  struct{}
	uowMode int
)

const (
	readMode uowMode = iota + 1
	writeMode
)

var (
	_ core.UnitOfWork = (*DB)(nil) // interface compliance check

	errReadOnly = errors.New("write inside a read-only unit of work")
)

// Open loads the stored snapshot, falling back to the seed for every collection the store
// does not hold. A store that cannot be read or holds malformed data is logged and the
// whole seed is used.
func Open(store snapshot.Store, logger core.Logger) (*DB, error) {
	seed, err := snapshot.LoadSeed()
	if err != nil {
		return nil, errors.Wrap(err, "loading seed")
	}
	db := &DB{
		store:        store,
		logger:       logger,
		seed:         seed,
		user:         new(userTable),
		task:         new(taskTable),
		submission:   new(submissionTable),
		deliverable:  new(deliverableTable),
		review:       new(reviewTable),
		notification: new(notificationTable),
		attendance:   new(attendanceTable),
		cohorts:      seed.Cohorts,
		workstreams:  seed.Workstreams,
		projects:     seed.Projects,
		sessions:     seed.Sessions,
	}

	snap := seed.Snapshot
	data, err := store.Load(context.Background())
	if err != nil {
		logger.Error("could not load snapshot, using seed data", err)
	} else if snap, err = snapshot.Decode(data, seed.Snapshot); err != nil {
		logger.Warn("malformed snapshot ignored, using seed data", err)
		snap = seed.Snapshot
	}
	if err = db.load(snap); err != nil {
		return nil, err
	}
	return db, nil
}

// load replaces every mutable collection with a deep copy of snap.
func (db *DB) load(snap snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return errors.Wrap(err, "copying snapshot")
	}
	if snap, err = snapshot.Decode(data, snapshot.Snapshot{}); err != nil {
		return errors.Wrap(err, "copying snapshot")
	}
	db.restore(snap)
	return nil
}

func (db *DB) restore(snap snapshot.Snapshot) {
	users := make([]user.User, 0, len(snap.Users))
	for _, u := range snap.Users {
		users = append(users, u.ToUser())
	}

	db.user.Lock()
	db.user.rows = users
	db.user.Unlock()

	db.task.Lock()
	db.task.rows = snap.Tasks
	db.task.Unlock()

	db.submission.Lock()
	db.submission.rows = snap.Submissions
	db.submission.Unlock()

	db.deliverable.Lock()
	db.deliverable.rows = snap.Deliverables
	db.deliverable.Unlock()

	db.review.Lock()
	db.review.rows = snap.Reviews
	db.review.Unlock()

	db.notification.Lock()
	db.notification.rows = snap.Notifications
	db.notification.Unlock()

	db.attendance.Lock()
	db.attendance.rows = snap.Attendance
	db.attendance.Unlock()
}

// Export returns the current mutable collections.
func (db *DB) Export() snapshot.Snapshot {
	var snap snapshot.Snapshot

	db.user.RLock()
	snap.Users = make([]snapshot.User, 0, len(db.user.rows))
	for _, u := range db.user.rows {
		snap.Users = append(snap.Users, snapshot.FromUser(u))
	}
	db.user.RUnlock()

	db.task.RLock()
	snap.Tasks = append([]task.Task(nil), db.task.rows...)
	db.task.RUnlock()

	db.submission.RLock()
	snap.Submissions = append([]review.Submission(nil), db.submission.rows...)
	db.submission.RUnlock()

	db.deliverable.RLock()
	snap.Deliverables = append([]review.Deliverable(nil), db.deliverable.rows...)
	db.deliverable.RUnlock()

	db.review.RLock()
	snap.Reviews = append([]review.Review(nil), db.review.rows...)
	db.review.RUnlock()

	db.notification.RLock()
	snap.Notifications = append([]notification.Notification(nil), db.notification.rows...)
	db.notification.RUnlock()

	db.attendance.RLock()
	snap.Attendance = append([]attendance.Record(nil), db.attendance.rows...)
	db.attendance.RUnlock()

	return snap
}

// Reset restores the seed data and persists it.
func (db *DB) Reset(ctx context.Context) error {
	return db.Do(ctx, func(ctx context.Context) error {
		return db.load(db.seed.Snapshot)
	})
}

func (db *DB) persist(ctx context.Context) {
	data, err := snapshot.Encode(db.Export())
	if err != nil {
		db.logger.Error("could not encode snapshot", err)
		return
	}
	if err = db.store.Save(ctx, data); err != nil {
		db.logger.Error("could not persist snapshot", err)
	}
}

func modeOf(ctx context.Context) uowMode {
	mode, _ := ctx.Value(uowKey{}).(uowMode)
	return mode
}

// Do runs fn under the write lock. Nested calls join the outer unit of work.
func (db *DB) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	switch modeOf(ctx) {
	case writeMode:
		return fn(ctx)
	case readMode:
		return errReadOnly
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	before := db.Export()
	if err := fn(context.WithValue(ctx, uowKey{}, writeMode)); err != nil {
		db.restore(before)
		return err
	}
	db.persist(ctx)
	return nil
}

// View runs fn under the read lock.
func (db *DB) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if modeOf(ctx) != 0 {
		return fn(ctx)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(context.WithValue(ctx, uowKey{}, readMode))
}

func (db *DB) Close() error {
	return db.store.Close()
}
