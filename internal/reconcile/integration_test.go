package reconcile

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rubox/internal/remote"
	"rubox/internal/remote/disktest"
)

func newDiskEngine(t *testing.T) (*Engine, *disktest.Server, string) {
	t.Helper()

	srv := disktest.New()
	srv.Now = func() time.Time { return base }
	t.Cleanup(srv.Close)

	client := remote.NewClient(remote.Options{
		BaseURL:     srv.BaseURL(),
		RemoteRoot:  "Backup/photos",
		TokenSource: remote.StaticToken("token"),
		Logger:      zaptest.NewLogger(t),
	})
	srv.Token = "token"

	dir := t.TempDir()
	engine := New(Options{
		Fs:        afero.NewOsFs(),
		Store:     client,
		LocalRoot: dir,
		Interval:  interval,
		Logger:    zaptest.NewLogger(t),
	})

	return engine, srv, dir
}

func writeOSFile(t *testing.T, p, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	require.NoError(t, os.Chtimes(p, base, base))
}

func TestPassAgainstDiskServer(t *testing.T) {
	engine, srv, dir := newDiskEngine(t)
	srv.Mkdir("Backup")
	writeOSFile(t, filepath.Join(dir, "cover.jpg"), "cover")
	writeOSFile(t, filepath.Join(dir, "2024", "june", "beach.jpg"), "beach")

	stats := engine.Pass(context.Background())

	assert.Equal(t, 2, stats.Uploads)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, []string{
		"Backup",
		"Backup/photos",
		"Backup/photos/2024",
		"Backup/photos/2024/june",
		"Backup/photos/2024/june/beach.jpg",
		"Backup/photos/cover.jpg",
	}, srv.Paths())

	data, _, ok := srv.File("Backup/photos/2024/june/beach.jpg")
	require.True(t, ok)
	assert.Equal(t, "beach", string(data))

	srv.ResetCalls()
	stats = engine.Pass(context.Background())

	assert.Zero(t, stats.Operations())
	assert.Zero(t, srv.Count(http.MethodGet, disktest.EndpointLink))
	assert.Zero(t, srv.Count(http.MethodDelete, disktest.EndpointResources))
}

func TestPassRemovesRemoteOnlyEntries(t *testing.T) {
	engine, srv, dir := newDiskEngine(t)
	writeOSFile(t, filepath.Join(dir, "keep.txt"), "keep")
	srv.PutFile("Backup/photos/keep.txt", base, []byte("keep"))
	srv.PutFile("Backup/photos/stray.txt", base, []byte("stray"))
	srv.PutFile("Backup/photos/old/deep/x.jpg", base, nil)
	srv.PutFile("Backup/photos/old/y.jpg", base, nil)

	stats := engine.Pass(context.Background())

	assert.Equal(t, 1, stats.Deletes)
	assert.Equal(t, 1, stats.FolderDeletes)
	assert.Equal(t, []string{"Backup", "Backup/photos", "Backup/photos/keep.txt"}, srv.Paths())
}

func TestPassSurvivesServerErrors(t *testing.T) {
	engine, srv, dir := newDiskEngine(t)
	srv.Mkdir("Backup/photos")
	writeOSFile(t, filepath.Join(dir, "a.txt"), "a")
	writeOSFile(t, filepath.Join(dir, "b.txt"), "b")
	srv.Fail(http.MethodGet, disktest.EndpointLink, "Backup/photos/a.txt", http.StatusInternalServerError, 1)

	stats := engine.Pass(context.Background())

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Uploads)
	assert.True(t, srv.Exists("Backup/photos/b.txt"))

	stats = engine.Pass(context.Background())

	assert.Equal(t, 1, stats.Uploads)
	assert.True(t, srv.Exists("Backup/photos/a.txt"))
}
