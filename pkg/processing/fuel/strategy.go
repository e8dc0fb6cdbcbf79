package fuel

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

const (
	StrategyFullRace = "FullRace"
	StrategyLastLap  = "LastLap"
	StrategyFiveLap  = "FiveLap"
)

// Strategy computes the required refuel amount for the remaining session
// distance under one consumption averaging policy.
type Strategy interface {
	Name() string
	// Calculate recomputes the average consumption from the completed
	// laps and, when at least one lap exists, the refuel amount
	// against the last lap's ending fuel.
	Calculate(completedLaps []*model.Lap, lapsRemaining int)
	// UpdateRefuel recomputes the refuel amount for the given live
	// fuel level.
	UpdateRefuel(currentFuelLevel float64, lapsRemaining int)
	// UpdateLapsOfFuelRemaining tracks fuel burn between lap
	// boundaries.
	UpdateLapsOfFuelRemaining(currentFuelLevel float64)
	RequiresRefueling() bool
	View() model.StrategyView
	Clear()
}

// averagerFunc picks the consumption figure for a strategy variant from
// the completed laps. Zero when no laps exist.
type averagerFunc func(laps []*model.Lap) float64

type baseStrategy struct {
	name       string
	fuelCutoff float64
	averager   averagerFunc

	consumption         float64
	refuelAmount        float64
	lapsOfFuelRemaining float64
}

func lastLapConsumption(laps []*model.Lap) float64 {
	if len(laps) == 0 {
		return 0
	}
	return laps[len(laps)-1].FuelUsed
}

// NewLastLapStrategy uses only the most recently completed lap.
func NewLastLapStrategy(fuelCutoff float64) Strategy {
	return &baseStrategy{
		name:       StrategyLastLap,
		fuelCutoff: fuelCutoff,
		averager:   lastLapConsumption,
	}
}

// NewFullRaceStrategy averages all completed laps except the first. The
// opening lap burns an atypical amount (start procedure, fuel saving)
// and would skew the mean.
func NewFullRaceStrategy(fuelCutoff float64) Strategy {
	return &baseStrategy{
		name:       StrategyFullRace,
		fuelCutoff: fuelCutoff,
		averager: func(laps []*model.Lap) float64 {
			if len(laps) < 2 {
				return lastLapConsumption(laps)
			}
			return lo.MeanBy(laps[1:],
				func(l *model.Lap) float64 { return l.FuelUsed })
		},
	}
}

// NewFiveLapStrategy averages the trailing five laps once more than five
// are available, falling back to the last lap until then.
func NewFiveLapStrategy(fuelCutoff float64) Strategy {
	return &baseStrategy{
		name:       StrategyFiveLap,
		fuelCutoff: fuelCutoff,
		averager: func(laps []*model.Lap) float64 {
			if len(laps) <= 5 {
				return lastLapConsumption(laps)
			}
			return lo.MeanBy(laps[len(laps)-5:],
				func(l *model.Lap) float64 { return l.FuelUsed })
		},
	}
}

func (s *baseStrategy) Name() string { return s.name }

func (s *baseStrategy) Calculate(completedLaps []*model.Lap, lapsRemaining int) {
	s.consumption = s.averager(completedLaps)
	if len(completedLaps) > 0 {
		last := completedLaps[len(completedLaps)-1]
		s.UpdateRefuel(last.EndingFuel, lapsRemaining)
	}
}

func (s *baseStrategy) UpdateRefuel(currentFuelLevel float64, lapsRemaining int) {
	switch {
	case lapsRemaining == 0:
		s.refuelAmount = 0
	case s.consumption > 0:
		fuelRequired := float64(lapsRemaining) * s.consumption
		fuelAtEnd := currentFuelLevel - fuelRequired
		if fuelAtEnd < s.fuelCutoff {
			s.refuelAmount = s.fuelCutoff - fuelAtEnd
		} else {
			// negative means no stop needed
			s.refuelAmount = fuelRequired - currentFuelLevel
		}
	}
	s.UpdateLapsOfFuelRemaining(currentFuelLevel)
}

func (s *baseStrategy) UpdateLapsOfFuelRemaining(currentFuelLevel float64) {
	if s.consumption > 0 {
		s.lapsOfFuelRemaining = (currentFuelLevel - s.fuelCutoff) / s.consumption
	} else {
		s.lapsOfFuelRemaining = 0
	}
}

func (s *baseStrategy) RequiresRefueling() bool {
	return s.refuelAmount > 0
}

func (s *baseStrategy) View() model.StrategyView {
	return model.StrategyView{
		Name:                s.name,
		FuelConsumption:     s.consumption,
		RefuelAmount:        s.refuelAmount,
		LapsOfFuelRemaining: s.lapsOfFuelRemaining,
	}
}

func (s *baseStrategy) Clear() {
	s.consumption = 0
	s.refuelAmount = 0
	s.lapsOfFuelRemaining = 0
}
