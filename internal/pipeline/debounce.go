package pipeline

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"rubox/internal/model"
)

// Debounce collects events until the input has been quiet for delay, then
// emits the burst with one event per path (the latest wins). Pending events
// are flushed when the input closes.
func Debounce(inCh <-chan model.FileEvent, delay time.Duration, clock clockwork.Clock) <-chan []model.FileEvent {
	outCh := make(chan []model.FileEvent, 1)

	go func() {
		defer close(outCh)

		pending := make(map[string]model.FileEvent)
		var timer clockwork.Timer
		var fire <-chan time.Time

		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := make([]model.FileEvent, 0, len(pending))
			for _, event := range pending {
				batch = append(batch, event)
			}
			slices.SortFunc(batch, func(a, b model.FileEvent) int {
				return a.Timestamp.Compare(b.Timestamp)
			})
			outCh <- batch
			pending = make(map[string]model.FileEvent)
		}

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					if timer != nil {
						timer.Stop()
					}
					flush()
					return
				}

				pending[event.Path] = event
				if timer == nil {
					timer = clock.NewTimer(delay)
				} else {
					timer.Stop()
					timer.Reset(delay)
				}
				fire = timer.Chan()

			case <-fire:
				fire = nil
				flush()
			}
		}
	}()

	return outCh
}
