//nolint:funlen // ok for tests
package fuel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

// seedLaps builds count completed laps burning targetConsumption each,
// starting from startingFuel.
func seedLaps(count int, targetConsumption, startingFuel float64) []*model.Lap {
	laps := make([]*model.Lap, 0, count)
	currentFuel := startingFuel
	for i := range count {
		laps = append(laps, &model.Lap{
			Number:       i + 1,
			StartingFuel: currentFuel,
			EndingFuel:   currentFuel - targetConsumption,
			FuelUsed:     targetConsumption,
		})
		currentFuel -= targetConsumption
	}
	return laps
}

func lapsWithFuelUsed(fuelUsed ...float64) []*model.Lap {
	laps := make([]*model.Lap, 0, len(fuelUsed))
	for i, f := range fuelUsed {
		laps = append(laps, &model.Lap{Number: i + 1, FuelUsed: f})
	}
	return laps
}

const testCutoff = 1.0

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, StrategyLastLap, NewLastLapStrategy(testCutoff).Name())
	assert.Equal(t, StrategyFullRace, NewFullRaceStrategy(testCutoff).Name())
	assert.Equal(t, StrategyFiveLap, NewFiveLapStrategy(testCutoff).Name())
}

func TestLastLapConsumption(t *testing.T) {
	tests := []struct {
		name string
		laps []*model.Lap
		want float64
	}{
		{"last lap wins", lapsWithFuelUsed(10.0, 5.0, 4.5), 4.5},
		{"single lap", lapsWithFuelUsed(10.0), 10.0},
		{"no laps", nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLastLapStrategy(testCutoff)
			s.Calculate(tt.laps, 1)
			assert.InDelta(t, tt.want, s.View().FuelConsumption, 1e-9)
		})
	}
}

func TestFiveLapConsumption(t *testing.T) {
	tests := []struct {
		name string
		laps []*model.Lap
		want float64
	}{
		{"trailing five mean", lapsWithFuelUsed(10, 5, 4, 6, 7, 5, 8), 6.0},
		{"five or fewer falls back to last", lapsWithFuelUsed(10, 5, 4, 6, 7), 7.0},
		{"no laps", nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFiveLapStrategy(testCutoff)
			s.Calculate(tt.laps, 1)
			assert.InDelta(t, tt.want, s.View().FuelConsumption, 1e-9)
		})
	}
}

func TestFullRaceConsumption(t *testing.T) {
	tests := []struct {
		name string
		laps []*model.Lap
		want float64
	}{
		{"skips the opening lap", lapsWithFuelUsed(10, 5, 4, 6), 5.0},
		{"single lap falls back to last", lapsWithFuelUsed(10), 10.0},
		{"no laps", nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFullRaceStrategy(testCutoff)
			s.Calculate(tt.laps, 1)
			assert.InDelta(t, tt.want, s.View().FuelConsumption, 1e-9)
		})
	}
}

func TestFullRaceCutoffTopUp(t *testing.T) {
	// the projected ending fuel is exactly 0, below the cutoff, so the
	// topped up amount equals the cutoff itself
	laps := lapsWithFuelUsed(10, 5, 4, 6)
	laps[len(laps)-1].EndingFuel = 50.0

	s := NewFullRaceStrategy(testCutoff)
	s.Calculate(laps, 10)

	view := s.View()
	assert.InDelta(t, 5.0, view.FuelConsumption, 1e-9)
	assert.InDelta(t, 1.0, view.RefuelAmount, 1e-9)
	assert.True(t, s.RequiresRefueling())
}

func TestFullRaceNoRefuelNeeded(t *testing.T) {
	// race from 100.0: laps burn 10,5,4,6 down to 75.0; ten laps at the
	// 5.0 average need 50.0, leaving a comfortable margin
	laps := lapsWithFuelUsed(10, 5, 4, 6)
	laps[len(laps)-1].EndingFuel = 75.0

	s := NewFullRaceStrategy(testCutoff)
	s.Calculate(laps, 10)

	view := s.View()
	assert.InDelta(t, 5.0, view.FuelConsumption, 1e-9)
	assert.InDelta(t, -25.0, view.RefuelAmount, 1e-9)
	assert.False(t, s.RequiresRefueling())
}

func TestCalculateUpdatesRefuel(t *testing.T) {
	// 5 laps of 5.0 from 50.0 leave exactly the required fuel, so only
	// the cutoff reserve needs to be added.
	s := NewLastLapStrategy(testCutoff)
	s.Calculate(seedLaps(5, 5.0, 50.0), 5)

	view := s.View()
	assert.InDelta(t, 5.0, view.FuelConsumption, 1e-9)
	assert.InDelta(t, testCutoff, view.RefuelAmount, 1e-9)
	assert.Less(t, view.LapsOfFuelRemaining, 5.0)
}

func TestCalculateSkipsRefuelWithoutLaps(t *testing.T) {
	s := NewLastLapStrategy(testCutoff)
	s.Calculate(nil, 5)

	view := s.View()
	assert.Zero(t, view.FuelConsumption)
	assert.Zero(t, view.RefuelAmount)
	assert.Zero(t, view.LapsOfFuelRemaining)
}

func TestUpdateRefuel(t *testing.T) {
	tests := []struct {
		name          string
		seed          []*model.Lap
		currentFuel   float64
		lapsRemaining int
		wantRefuel    float64
		wantRequired  bool
	}{
		{
			// 5.0 in the tank, 25.0 needed: 20.0 short plus cutoff
			name:          "insufficient fuel",
			seed:          seedLaps(1, 5.0, 10.0),
			currentFuel:   5.0,
			lapsRemaining: 5,
			wantRefuel:    21.0,
			wantRequired:  true,
		},
		{
			name:          "sufficient fuel",
			seed:          seedLaps(1, 5.0, 35.0),
			currentFuel:   30.0,
			lapsRemaining: 5,
			wantRefuel:    -5.0,
			wantRequired:  false,
		},
		{
			// fuel at end 0.5 is positive but below the cutoff
			name:          "cutoff top up",
			seed:          seedLaps(1, 5.0, 25.5),
			currentFuel:   20.5,
			lapsRemaining: 4,
			wantRefuel:    0.5,
			wantRequired:  true,
		},
		{
			name:          "fuel at end above cutoff",
			seed:          seedLaps(1, 5.0, 31.1),
			currentFuel:   26.1,
			lapsRemaining: 5,
			wantRefuel:    -1.1,
			wantRequired:  false,
		},
		{
			name:          "zero laps remaining",
			seed:          seedLaps(1, 5.0, 55.0),
			currentFuel:   50.0,
			lapsRemaining: 0,
			wantRefuel:    0.0,
			wantRequired:  false,
		},
		{
			name:          "zero consumption",
			seed:          seedLaps(1, 0.0, 50.0),
			currentFuel:   50.0,
			lapsRemaining: 5,
			wantRefuel:    0.0,
			wantRequired:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLastLapStrategy(testCutoff)
			s.Calculate(tt.seed, 0)
			s.UpdateRefuel(tt.currentFuel, tt.lapsRemaining)

			assert.InDelta(t, tt.wantRefuel, s.View().RefuelAmount, 1e-9)
			assert.Equal(t, tt.wantRequired, s.RequiresRefueling())
		})
	}
}

func TestUpdateLapsOfFuelRemaining(t *testing.T) {
	s := NewLastLapStrategy(testCutoff)
	s.Calculate(seedLaps(1, 5.0, 55.0), 0)

	s.UpdateLapsOfFuelRemaining(50.0)
	// (50.0 - cutoff) / 5.0
	assert.InDelta(t, 9.8, s.View().LapsOfFuelRemaining, 1e-9)

	s.Calculate(seedLaps(1, 0.0, 45.0), 0)
	s.UpdateLapsOfFuelRemaining(45.0)
	assert.Zero(t, s.View().LapsOfFuelRemaining)
}

func TestRequiresRefuelingFollowsFuelLevel(t *testing.T) {
	s := NewLastLapStrategy(testCutoff)
	s.Calculate(seedLaps(1, 5.0, 15.0), 0)

	s.UpdateRefuel(10.0, 5)
	assert.True(t, s.RequiresRefueling())

	s.UpdateRefuel(30.0, 5)
	assert.False(t, s.RequiresRefueling())
}

func TestStrategyClear(t *testing.T) {
	s := NewFullRaceStrategy(testCutoff)
	s.Calculate(seedLaps(5, 5.0, 50.0), 5)
	assert.NotZero(t, s.View().FuelConsumption)

	s.Clear()

	view := s.View()
	assert.Zero(t, view.FuelConsumption)
	assert.Zero(t, view.RefuelAmount)
	assert.Zero(t, view.LapsOfFuelRemaining)
	assert.False(t, s.RequiresRefueling())
	assert.Equal(t, StrategyFullRace, view.Name)
}
