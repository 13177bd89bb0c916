package pipeline

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubox/internal/model"
)

func TestMatchName(t *testing.T) {
	ignore := IgnoreList{"*.tmp", "*.swp", "~$*", "cache"}

	assert.True(t, ignore.MatchName("draft.tmp"))
	assert.True(t, ignore.MatchName(".notes.swp"))
	assert.True(t, ignore.MatchName("~$report.docx"))
	assert.True(t, ignore.MatchName("cache"))
	assert.False(t, ignore.MatchName("report.docx"))
	assert.False(t, IgnoreList(nil).MatchName("a.tmp"))
}

func TestMatchPathOnlyLooksBelowRoot(t *testing.T) {
	ignore := IgnoreList{"*.tmp", "cache"}

	assert.True(t, ignore.MatchPath("/data", "/data/cache/a.txt"))
	assert.True(t, ignore.MatchPath("/data", "/data/docs/b.tmp"))
	assert.False(t, ignore.MatchPath("/data", "/data/docs/report.docx"))
	assert.False(t, ignore.MatchPath("/home/cache/share", "/home/cache/share/a.txt"))
	assert.False(t, ignore.MatchPath("/data", "/data"))
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"*.tmp", "~$*"}))
	assert.Error(t, ValidatePatterns([]string{"*.tmp", "[a-"}))
}

func TestFilter(t *testing.T) {
	in := make(chan model.FileEvent, 4)
	in <- model.FileEvent{Path: "/srv/tmp/data/a.txt"}
	in <- model.FileEvent{Path: "/srv/tmp/data/b.tmp"}
	in <- model.FileEvent{Path: "/srv/tmp/data/tmp/c.txt"}
	in <- model.FileEvent{Path: "/srv/tmp/data/d.txt"}
	close(in)

	var got []string
	for event := range Filter(in, "/srv/tmp/data", IgnoreList{"*.tmp", "tmp"}) {
		got = append(got, event.Path)
	}

	assert.Equal(t, []string{"/srv/tmp/data/a.txt", "/srv/tmp/data/d.txt"}, got)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan model.FileEvent)
	out := Debounce(in, time.Second, clock)

	t0 := clock.Now()
	in <- model.FileEvent{Type: model.EventCreate, Path: "/data/a.txt", Timestamp: t0}
	in <- model.FileEvent{Type: model.EventWrite, Path: "/data/b.txt", Timestamp: t0.Add(time.Millisecond)}
	in <- model.FileEvent{Type: model.EventWrite, Path: "/data/a.txt", Timestamp: t0.Add(2 * time.Millisecond)}

	require.NoError(t, clock.BlockUntilContext(testContext(t), 1))

	var batch []model.FileEvent
	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		select {
		case batch = <-out:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, batch, 2)
	assert.Equal(t, "/data/b.txt", batch[0].Path)
	assert.Equal(t, "/data/a.txt", batch[1].Path)
	assert.Equal(t, model.EventWrite, batch[1].Type)

	close(in)
	_, ok := <-out
	assert.False(t, ok)
}

func TestDebounceFlushesOnClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan model.FileEvent, 1)
	out := Debounce(in, time.Hour, clock)

	in <- model.FileEvent{Path: "/data/a.txt"}
	close(in)

	batch, ok := <-out
	require.True(t, ok)
	assert.Len(t, batch, 1)
}
