package fuel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

func TestLapTrackerCompleteLap(t *testing.T) {
	tracker := NewLapTracker()
	tracker.StartNewLap(1, 50.0)
	tracker.CompleteCurrentLap(45.5, secs(62.5))

	laps := tracker.PlayerLaps()
	assert.Len(t, laps, 1)

	want := &model.Lap{
		Number:       1,
		StartingFuel: 50.0,
		EndingFuel:   45.5,
		FuelUsed:     4.5,
		Time:         secs(62.5),
	}
	if diff := cmp.Diff(want, laps[0]); diff != "" {
		t.Errorf("completed lap mismatch (-want +got):\n%s", diff)
	}
}

func TestLapTrackerCompleteWithoutCurrentLap(t *testing.T) {
	tracker := NewLapTracker()
	tracker.CompleteCurrentLap(45.5, secs(62.5))

	assert.Empty(t, tracker.PlayerLaps())
	assert.Nil(t, tracker.CurrentLap())
}

func TestLapTrackerCurrentLapAliasesLastCompleted(t *testing.T) {
	// after completion the current lap still points at the completed
	// entry until a new lap starts
	tracker := NewLapTracker()
	tracker.StartNewLap(3, 40.0)
	tracker.CompleteCurrentLap(35.0, secs(60))

	laps := tracker.PlayerLaps()
	assert.Same(t, laps[0], tracker.CurrentLap())

	tracker.StartNewLap(4, 35.0)
	assert.NotSame(t, laps[0], tracker.CurrentLap())
	assert.Equal(t, 4, tracker.CurrentLap().Number)
}

func TestLapTrackerCompletedLapsCount(t *testing.T) {
	tracker := NewLapTracker()
	assert.Equal(t, -1, tracker.CompletedLapsCount())

	tracker.StartNewLap(1, 50.0)
	tracker.CompleteCurrentLap(45.0, secs(60))
	assert.Equal(t, 0, tracker.CompletedLapsCount())

	tracker.StartNewLap(2, 45.0)
	tracker.CompleteCurrentLap(40.0, secs(60))
	assert.Equal(t, 1, tracker.CompletedLapsCount())
}

func TestLapTrackerCompleteIsFinalizedOnce(t *testing.T) {
	tracker := NewLapTracker()
	tracker.StartNewLap(1, 50.0)
	tracker.CompleteCurrentLap(45.0, secs(60))

	// the current lap still aliases the completed one; completing again
	// must not touch it or grow the sequence
	tracker.CompleteCurrentLap(40.0, secs(70))

	laps := tracker.PlayerLaps()
	assert.Len(t, laps, 1)
	assert.InDelta(t, 45.0, laps[0].EndingFuel, 1e-9)
	assert.Equal(t, secs(60), laps[0].Time)
}

func TestLapTrackerStartWithHistory(t *testing.T) {
	tracker := NewLapTracker()
	entry := &model.HistoryEntry{
		TrackID:     18,
		CarID:       77,
		Consumption: 5.5,
		LapTime:     95.0,
	}
	tracker.StartWithHistory(10, entry)

	laps := tracker.PlayerLaps()
	assert.Len(t, laps, 1)

	want := &model.Lap{
		Number:       10,
		StartingFuel: 5.5,
		EndingFuel:   0.0,
		FuelUsed:     5.5,
		Time:         secs(95.0),
	}
	if diff := cmp.Diff(want, laps[0]); diff != "" {
		t.Errorf("seeded lap mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, tracker.CompletedLapsCount())
}

func TestLapTrackerResetCurrentLap(t *testing.T) {
	tracker := NewLapTracker()
	tracker.StartNewLap(1, 50.0)
	tracker.CompleteCurrentLap(45.0, secs(60))
	tracker.StartNewLap(2, 45.0)

	tracker.ResetCurrentLap()

	assert.Nil(t, tracker.CurrentLap())
	assert.Len(t, tracker.PlayerLaps(), 1)

	// completing now is a no-op
	tracker.CompleteCurrentLap(40.0, secs(60))
	assert.Len(t, tracker.PlayerLaps(), 1)
}

func TestLapTrackerClear(t *testing.T) {
	tracker := NewLapTracker()
	tracker.StartNewLap(1, 50.0)
	tracker.CompleteCurrentLap(45.0, secs(60))
	tracker.StartNewLap(2, 45.0)

	tracker.Clear()

	assert.Nil(t, tracker.CurrentLap())
	assert.Empty(t, tracker.PlayerLaps())
	assert.Equal(t, -1, tracker.CompletedLapsCount())
}
