package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

func sample() *model.TelemetrySample {
	return &model.TelemetrySample{
		SessionNum:     0,
		PlayerCarIdx:   1,
		CarIdxTrackPct: []float64{0.9, 0.25, 0.5},
		CarIdxPosition: []int{0, 2, 1},
		CarIdxClass:    []int{11, 84, 84},
	}
}

func TestProcessDerivesPlayerValues(t *testing.T) {
	p := NewParser()
	p.Process(sample(), 0)

	assert.Equal(t, 1, p.PlayerCarIdx)
	assert.Equal(t, 84, p.PlayerCarClassID)
	assert.InDelta(t, 0.25, p.PlayerTrackPct, 1e-9)
	assert.InDelta(t, 0.5, p.TrackPct(2), 1e-9)
	assert.Zero(t, p.TrackPct(-1))
	assert.Zero(t, p.TrackPct(9))
}

func TestProcessPositions(t *testing.T) {
	p := NewParser()
	p.Process(sample(), 0)

	// carIdx 0 is the pace car and never ranks
	assert.Equal(t, map[int]int{1: 2, 2: 1}, p.PositionInRace)
	assert.Equal(t, map[int]int{1: 2, 2: 1}, p.PositionInClass)
}

func TestProcessPositionsSkipOtherClasses(t *testing.T) {
	s := sample()
	s.CarIdxClass = []int{11, 84, 19}
	p := NewParser()
	p.Process(s, 0)

	assert.Equal(t, map[int]int{2: 1}, p.PositionInClass)
	assert.Equal(t, map[int]int{1: 2, 2: 1}, p.PositionInRace)
}

func TestSessionSwitchDetection(t *testing.T) {
	p := NewParser()

	s := sample()
	p.Process(s, 0)
	assert.False(t, p.HasSwitchedSessions)

	s.SessionNum = 1
	p.Process(s, 0)
	assert.True(t, p.HasSwitchedSessions)

	// exactly one tick wide
	p.Process(s, 0)
	assert.False(t, p.HasSwitchedSessions)
	assert.Equal(t, 1, p.CurrentSessionNumber)
}

func TestParserClear(t *testing.T) {
	p := NewParser()
	p.Process(sample(), 0)

	p.Clear()

	assert.Equal(t, -1, p.PlayerCarIdx)
	assert.Zero(t, p.PlayerTrackPct)
	assert.Empty(t, p.PositionInRace)
	assert.Empty(t, p.PositionInClass)
}

func TestDriversLastLapTimes(t *testing.T) {
	lapTimes := []time.Duration{10 * time.Second, 65 * time.Second, 66 * time.Second}

	got := DriversLastLapTimes(0, lapTimes)

	assert.Equal(t, map[int]time.Duration{
		1: 65 * time.Second,
		2: 66 * time.Second,
	}, got)
}
