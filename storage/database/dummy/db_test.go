package dummydb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
	dummydb "github.com/trezcool/getskill/storage/database/dummy"
	"github.com/trezcool/getskill/storage/snapshot"
	"github.com/trezcool/getskill/tests"
)

func open(t *testing.T, store snapshot.Store) *dummydb.DB {
	t.Helper()
	db, err := dummydb.Open(store, testutil.NewLogger())
	require.NoError(t, err)
	return db
}

func TestOpen_seedFallback(t *testing.T) {
	db := open(t, snapshot.NewMemStore())
	snap := db.Export()
	assert.Len(t, snap.Users, 31)
	assert.Len(t, snap.Attendance, 144)

	store := snapshot.NewMemStore()
	require.NoError(t, store.Save(context.Background(), map[string][]byte{snapshot.KeyTasks: []byte(`[`)}))
	db = open(t, store)
	assert.Len(t, db.Export().Tasks, 12, "malformed snapshot falls back to seed")
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemStore()
	db := open(t, store)
	repo := dummydb.NewTaskRepository(db)
	errBoom := errors.New("boom")

	t.Run("rollback on error", func(t *testing.T) {
		err := db.Do(ctx, func(ctx context.Context) error {
			tk, err := repo.GetTask(ctx, "task-1")
			require.NoError(t, err)
			tk.Status = task.StatusTodo
			_, err = repo.UpdateTask(ctx, tk)
			require.NoError(t, err)
			_, err = repo.CreateTask(ctx, task.Task{ID: "task-x"})
			require.NoError(t, err)
			return errBoom
		})
		assert.Equal(t, errBoom, err)

		tk, err := repo.GetTask(ctx, "task-1")
		require.NoError(t, err)
		assert.Equal(t, task.StatusCompleted, tk.Status)
		_, err = repo.GetTask(ctx, "task-x")
		assert.Equal(t, task.ErrNotFound, err)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("nested and persisted", func(t *testing.T) {
		err := db.Do(ctx, func(ctx context.Context) error {
			return db.Do(ctx, func(ctx context.Context) error {
				_, err := repo.CreateTask(ctx, task.Task{ID: "task-y", Tags: []string{}})
				return err
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.Saves())

		// a database opened on the same store sees the change
		reopened := open(t, store)
		_, err = dummydb.NewTaskRepository(reopened).GetTask(ctx, "task-y")
		assert.NoError(t, err)
	})

	t.Run("write inside view", func(t *testing.T) {
		err := db.View(ctx, func(ctx context.Context) error {
			return db.Do(ctx, func(ctx context.Context) error { return nil })
		})
		assert.Error(t, err)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	db := open(t, snapshot.NewMemStore())
	repo := dummydb.NewTaskRepository(db)

	require.NoError(t, db.Do(ctx, func(ctx context.Context) error {
		_, err := repo.CreateTask(ctx, task.Task{ID: "task-z"})
		return err
	}))
	require.NoError(t, db.Reset(ctx))

	_, err := repo.GetTask(ctx, "task-z")
	assert.Equal(t, task.ErrNotFound, err)
	assert.Len(t, db.Export().Tasks, 12)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := open(t, snapshot.NewMemStore())
	repo := dummydb.NewUserRepository(db)

	usr, err := repo.GetUserByEmail(ctx, "MENTOR1@getskill.in")
	require.NoError(t, err)
	assert.Equal(t, "mentor-1", usr.ID)

	_, err = repo.CreateUser(ctx, user.User{Email: "mentor1@getskill.in"})
	assert.Equal(t, user.ErrEmailExists, err)

	active := true
	students, err := repo.QueryUsers(ctx, user.QueryFilter{Roles: []string{user.RoleStudent}, CohortID: "cohort-2", IsActive: &active})
	require.NoError(t, err)
	assert.Len(t, students, 8)

	found, err := repo.QueryUsers(ctx, user.QueryFilter{Search: "nair"}, core.DBOrdering{Field: "name", Ascending: true})
	require.NoError(t, err)
	if assert.Len(t, found, 2) {
		assert.Equal(t, "Arjun Nair", found[0].Name)
		assert.Equal(t, "Priya Nair", found[1].Name)
	}

	usr.Name = "Renamed"
	usr.PasswordHash = nil
	_, err = repo.UpdateUser(ctx, usr)
	require.NoError(t, err)
	updated, err := repo.GetUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.NoError(t, updated.CheckPassword(testutil.SeedPassword), "hash kept when not set")
}

func TestTaskRepository_ordering(t *testing.T) {
	ctx := context.Background()
	repo := dummydb.NewTaskRepository(open(t, snapshot.NewMemStore()))

	tasks, err := repo.QueryTasks(ctx, task.QueryFilter{AssignedTo: "student-2"}, core.DBOrdering{Field: "priority"})
	require.NoError(t, err)
	if assert.Len(t, tasks, 2) {
		assert.Equal(t, "task-3", tasks[0].ID) // medium before low
		assert.Equal(t, "task-4", tasks[1].ID)
	}
}
