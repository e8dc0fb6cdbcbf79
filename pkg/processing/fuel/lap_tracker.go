package fuel

import (
	"time"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

// LapTracker owns the player's in-progress lap and the ordered list of
// completed laps. After CompleteCurrentLap the current lap keeps
// referencing the just completed lap until StartNewLap replaces it;
// callers distinguish "no current lap" via the nil return of CurrentLap.
type LapTracker struct {
	current   *model.Lap
	completed []*model.Lap
}

func NewLapTracker() *LapTracker {
	return &LapTracker{completed: make([]*model.Lap, 0)}
}

func (t *LapTracker) StartNewLap(number int, startingFuel float64) {
	t.current = &model.Lap{Number: number, StartingFuel: startingFuel}
}

// CompleteCurrentLap finalizes the current lap and appends it to the
// completed sequence. A lap is finalized exactly once: completing again
// while the current lap still aliases the last completed one is a no-op,
// as is completing with no lap in progress.
func (t *LapTracker) CompleteCurrentLap(endingFuel float64, lapTime time.Duration) {
	if t.current == nil {
		return
	}
	if len(t.completed) > 0 && t.completed[len(t.completed)-1] == t.current {
		return
	}
	t.current.EndingFuel = endingFuel
	t.current.FuelUsed = t.current.StartingFuel - endingFuel
	t.current.Time = lapTime
	t.completed = append(t.completed, t.current)
}

// StartWithHistory synthesizes and immediately completes one lap from
// persisted averages (starting fuel = historical consumption, ending
// fuel = 0). Used to seed the projection math before telemetry produced
// a real lap.
func (t *LapTracker) StartWithHistory(number int, entry *model.HistoryEntry) {
	t.StartNewLap(number, entry.Consumption)
	t.CompleteCurrentLap(0,
		time.Duration(entry.LapTime*float64(time.Second)))
}

func (t *LapTracker) CurrentLap() *model.Lap {
	return t.current
}

// PlayerLaps returns the completed laps in completion order. The slice is
// owned by the tracker and must not be mutated by callers.
func (t *LapTracker) PlayerLaps() []*model.Lap {
	return t.completed
}

// CompletedLapsCount reports one less than the number of completed laps
// (-1 when none). The offset matches the historic behavior of the
// persisted lap count and is kept for compatibility with existing
// history entries.
func (t *LapTracker) CompletedLapsCount() int {
	return len(t.completed) - 1
}

// ResetCurrentLap discards the in-progress lap without completing it.
func (t *LapTracker) ResetCurrentLap() {
	t.current = nil
}

func (t *LapTracker) Clear() {
	t.current = nil
	t.completed = t.completed[:0]
}
