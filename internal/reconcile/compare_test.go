package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rubox/internal/model"
)

const interval = 5 * time.Minute

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestIsDrift(t *testing.T) {
	cases := []struct {
		name string
		diff time.Duration
		want bool
	}{
		{"identical", 0, false},
		{"inside dead zone", interval - time.Second, false},
		{"dead zone edge", interval, false},
		{"just past dead zone", interval + time.Second, true},
		{"middle of window", 2 * interval, true},
		{"just below upper edge", 3*interval - time.Second, true},
		{"upper edge", 3 * interval, false},
		{"far beyond", 10 * interval, false},
		{"negative inside window", -2 * interval, true},
		{"negative dead zone", -interval / 2, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDrift(tc.diff, interval))
		})
	}
}

func TestDecideFiles(t *testing.T) {
	c := NewDirectoryComparison()
	c.LocalFiles["new.txt"] = base
	c.LocalFiles["same.txt"] = base
	c.LocalFiles["drifted.txt"] = base
	c.LocalFiles["stale.txt"] = base
	c.RemoteFiles["same.txt"] = base.Add(-30 * time.Second)
	c.RemoteFiles["drifted.txt"] = base.Add(-2 * interval)
	c.RemoteFiles["stale.txt"] = base.Add(-4 * interval)
	c.RemoteFiles["gone.txt"] = base

	decisions := c.Decide("docs", interval)

	assert.Equal(t, []model.SyncDecision{
		model.Upload("new.txt", "docs"),
		model.Delete("gone.txt", "docs"),
		model.Upload("drifted.txt", "docs"),
	}, decisions)
}

func TestDecideNothingWhenInSync(t *testing.T) {
	c := NewDirectoryComparison()
	c.LocalFiles["a.txt"] = base
	c.RemoteFiles["a.txt"] = base
	c.LocalFolders.Add("photos")
	c.RemoteFolders.Add("photos")

	assert.Empty(t, c.Decide("", interval))
}

func TestFolderDecisionsAsymmetry(t *testing.T) {
	cases := []struct {
		name   string
		local  []string
		remote []string
		want   []model.SyncDecision
	}{
		{
			name:   "remote has more folders",
			local:  []string{"keep"},
			remote: []string{"keep", "old", "older"},
			want: []model.SyncDecision{
				model.DeleteFolderSubtree("old", "sub"),
				model.DeleteFolderSubtree("older", "sub"),
			},
		},
		{
			name:   "local has more folders",
			local:  []string{"a", "b", "c"},
			remote: []string{"a", "x"},
		},
		{
			name:   "same count different names",
			local:  []string{"a", "b"},
			remote: []string{"a", "x"},
		},
		{
			name:   "equal sets",
			local:  []string{"a", "b"},
			remote: []string{"b", "a"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewDirectoryComparison()
			c.LocalFolders.Append(tc.local...)
			c.RemoteFolders.Append(tc.remote...)

			assert.Equal(t, tc.want, c.folderDecisions("sub"))
		})
	}
}

func TestDecideKeepsRemoteFileNamedLikeLocalFolder(t *testing.T) {
	c := NewDirectoryComparison()
	c.LocalFolders.Add("v1.2")
	c.AddRemote(model.RemoteEntry{Name: "v1.2", Kind: model.KindFile, ModifiedAt: base})
	c.AddRemote(model.RemoteEntry{Name: "old.txt", Kind: model.KindFile, ModifiedAt: base})

	assert.Equal(t, []model.SyncDecision{model.Delete("old.txt", "sub")}, c.Decide("sub", interval))
}

func TestAddRemoteDropsHidden(t *testing.T) {
	c := NewDirectoryComparison()
	c.AddRemote(model.RemoteEntry{Name: "a.txt", Kind: model.KindFile, ModifiedAt: base})
	c.AddRemote(model.RemoteEntry{Name: "albums", Kind: model.KindFolder})
	c.AddRemote(model.RemoteEntry{Name: ".trash", Kind: model.KindHidden})

	assert.Equal(t, map[string]time.Time{"a.txt": base}, c.RemoteFiles)
	assert.ElementsMatch(t, []string{"albums"}, c.RemoteFolders.ToSlice())
}
