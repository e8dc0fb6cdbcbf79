package fuel

import (
	"time"

	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

type driverLap struct {
	Number int
	Time   time.Duration
}

// LapAnalyzer collects every competitor's last lap times keyed by carIdx.
// It supplies the laps remaining projection with a leader's average lap
// time.
type LapAnalyzer struct {
	driversLaps map[int][]driverLap
}

func NewLapAnalyzer() *LapAnalyzer {
	return &LapAnalyzer{driversLaps: make(map[int][]driverLap)}
}

// CollectAllDriversLaps records a new lap for every driver whose
// completed lap counter advanced since the last call. Repeated calls with
// the same counters are idempotent.
func (a *LapAnalyzer) CollectAllDriversLaps(
	drivers map[int]model.Driver,
	lastLapTimes map[int]time.Duration,
	lapsCompleted []int,
) {
	for carIdx := range drivers {
		laps, ok := a.driversLaps[carIdx]
		if !ok {
			laps = make([]driverLap, 0)
			a.driversLaps[carIdx] = laps
		}
		if carIdx < 0 || carIdx >= len(lapsCompleted) {
			continue
		}
		completed := lapsCompleted[carIdx]
		if completed < 1 {
			continue
		}
		if len(laps) == 0 || laps[len(laps)-1].Number < completed {
			a.driversLaps[carIdx] = append(laps,
				driverLap{Number: completed, Time: lastLapTimes[carIdx]})
		}
	}
}

// GetLapTime returns the mean of the recorded lap times for carIdx,
// excluding zero duration laps (untimed/invalid). Unknown or negative
// indices and drivers without a valid lap yield zero.
func (a *LapAnalyzer) GetLapTime(carIdx int) time.Duration {
	if carIdx < 0 {
		return 0
	}
	laps, ok := a.driversLaps[carIdx]
	if !ok {
		return 0
	}
	timed := lo.Filter(laps, func(l driverLap, _ int) bool { return l.Time > 0 })
	if len(timed) == 0 {
		return 0
	}
	sum := lo.SumBy(timed, func(l driverLap) time.Duration { return l.Time })
	return sum / time.Duration(len(timed))
}

// GetLeaderIdx resolves position 1 in the given position -> carIdx map,
// -1 when no leader is known.
func (a *LapAnalyzer) GetLeaderIdx(positionToCarIdx map[int]int) int {
	if idx, ok := positionToCarIdx[1]; ok {
		return idx
	}
	return -1
}

func (a *LapAnalyzer) Clear() {
	clear(a.driversLaps)
}
