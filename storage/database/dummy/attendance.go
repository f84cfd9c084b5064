package dummydb

import (
	"context"

	"github.com/trezcool/getskill/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) index(sessionID, studentID string) int {
	for i, r := range repo.db.rows {
		if r.SessionID == sessionID && r.StudentID == studentID {
			return i
		}
	}
	return -1
}

func (repo *attendanceRepository) GetRecord(_ context.Context, sessionID, studentID string) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.index(sessionID, studentID); i >= 0 {
		return repo.db.rows[i], nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) SaveRecord(_ context.Context, r attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if i := repo.index(r.SessionID, r.StudentID); i >= 0 {
		repo.db.rows[i] = r
	} else {
		repo.db.rows = append(repo.db.rows, r)
	}
	return r, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, r := range repo.db.rows {
		if filter.Match(r) {
			recs = append(recs, r)
		}
	}
	return recs, nil
}
