package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core"
)

func loadSeed(t *testing.T) *Seed {
	t.Helper()
	seed, err := LoadSeed()
	require.NoError(t, err)
	return seed
}

func TestLoadSeed(t *testing.T) {
	seed := loadSeed(t)

	assert.Len(t, seed.Users, 31)
	assert.Len(t, seed.Cohorts, 3)
	assert.Len(t, seed.Sessions, 18)
	assert.Len(t, seed.Attendance, 24*6)

	first := seed.Attendance[0]
	assert.Equal(t, "att-cohort-1-student-1-1", first.ID)
	assert.Equal(t, "ses-c1-1", first.SessionID)
	assert.Equal(t, "2024-02-05", first.Date)
	assert.Equal(t, "2024-02-05T09:05:00Z", first.MarkedAt.Format("2006-01-02T15:04:05Z07:00"))

	for _, r := range seed.Attendance {
		if r.StudentID == "student-8" && r.Status == "absent" {
			assert.Equal(t, "No notice received", r.Note)
		}
	}

	for i := 1; i < len(seed.Notifications); i++ {
		assert.False(t, seed.Notifications[i].CreatedAt.After(seed.Notifications[i-1].CreatedAt), "notifications are newest first")
	}

	usr := seed.Users[0].ToUser()
	assert.NoError(t, usr.CheckPassword("Getskill@2024"))
	assert.True(t, usr.IsActive)
}

func TestParseSeed_invalidPlan(t *testing.T) {
	doc := []byte(`
defaultPassword: pwd
sessions:
  - {id: ses-1, cohortId: c1, date: 2024-01-01}
attendance:
  - cohortId: c1
    markedBy: m1
    plans:
      s1: PX
`)
	_, err := ParseSeed(doc)
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	seed := loadSeed(t)
	snap := seed.Snapshot
	snap.Reviews[0].Improvements = []string{"third", "first", "second"}

	data, err := Encode(snap)
	require.NoError(t, err)
	assert.Len(t, data, len(Keys))

	got, err := Decode(data, Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, []string{"third", "first", "second"}, got.Reviews[0].Improvements)
}

func TestDecode_fallback(t *testing.T) {
	seed := loadSeed(t)
	data, err := Encode(Snapshot{Tasks: seed.Tasks[:1]})
	require.NoError(t, err)
	delete(data, KeyReviews)

	got, err := Decode(data, seed.Snapshot)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 1)
	assert.Equal(t, seed.Reviews, got.Reviews)

	data[KeyAttendance] = []byte(`{"not": "a list"}`)
	_, err = Decode(data, seed.Snapshot)
	assert.Error(t, err)
	assert.Len(t, seed.Tasks, 12, "fallback left untouched")
}

func TestStores(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "data", "getskill.json")),
	}
	ctx := context.Background()
	seed := loadSeed(t)

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			data, err := Encode(seed.Snapshot)
			require.NoError(t, err)
			require.NoError(t, store.Save(ctx, data))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			got, err := Decode(loaded, Snapshot{})
			require.NoError(t, err)
			assert.Equal(t, seed.Snapshot, got)
			assert.NoError(t, store.Close())
		})
	}
}

func TestOpen(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Storage.FilePath = filepath.Join(t.TempDir(), "getskill.json")

	tests := []struct {
		driver  string
		want    interface{}
		wantErr bool
	}{
		{driver: DriverMemory, want: &MemStore{}},
		{driver: DriverFile, want: &FileStore{}},
		{driver: "", want: &FileStore{}},
		{driver: "mongo", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.driver, func(t *testing.T) {
			conf.Storage.Driver = tt.driver
			store, err := Open(conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}
