package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubox/internal/db"
	"rubox/internal/model"
)

func newRepo(t *testing.T) *HistoryRepository {
	t.Helper()

	gdb, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	return NewHistoryRepository(gdb)
}

func TestSaveAndGetRecent(t *testing.T) {
	repo := newRepo(t)
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}

	require.NoError(t, repo.Save(model.SyncResult{Decision: model.Upload("a.txt", "docs"), LocalPath: "/data/docs/a.txt"}))
	require.NoError(t, repo.Save(model.SyncResult{Decision: model.Delete("b.txt", ""), Err: errors.New("status 500")}))
	require.NoError(t, repo.Save(model.SyncResult{Decision: model.DeleteFolderSubtree("old", "docs")}))

	recent, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "docs/old", recent[0].RemoteKey)
	assert.Equal(t, model.ActionDeleteFolderSubtree, recent[0].Action)
	assert.Equal(t, "b.txt", recent[1].RemoteKey)
	assert.Equal(t, model.StatusFailed, recent[1].Status)
	assert.Equal(t, "status 500", recent[1].ErrMsg)

	failed, err := repo.GetFailed(10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, model.ActionDelete, failed[0].Action)

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Success: 2, Failed: 1}, stats)
}

func TestPrune(t *testing.T) {
	repo := newRepo(t)
	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return old }
	require.NoError(t, repo.Save(model.SyncResult{Decision: model.Upload("a.txt", "")}))

	recent := old.AddDate(1, 0, 0)
	repo.now = func() time.Time { return recent }
	require.NoError(t, repo.Save(model.SyncResult{Decision: model.Upload("b.txt", "")}))

	n, err := repo.Prune(old.AddDate(0, 6, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b.txt", rows[0].RemoteKey)
}
