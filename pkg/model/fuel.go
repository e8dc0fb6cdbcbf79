package model

import "time"

// Lap is one lap attempt of the player. FuelUsed and Time are finalized
// exactly once when the lap completes; a completed lap is never mutated
// again.
type Lap struct {
	Number       int           `json:"number"`
	StartingFuel float64       `json:"startingFuel"`
	EndingFuel   float64       `json:"endingFuel"`
	FuelUsed     float64       `json:"fuelUsed"`
	Time         time.Duration `json:"time"`
	IsInLap      bool          `json:"isInLap"`
	IsOutLap     bool          `json:"isOutLap"`
}

// HistoryEntry is the persisted per track/car fuel statistic used to seed
// projections before live lap data exists.
type HistoryEntry struct {
	TrackID int `json:"trackId"`
	CarID   int `json:"carId"`
	// average consumption per lap
	Consumption float64 `json:"consumption"`
	LapCount    int     `json:"lapCount"`
	// representative lap time in seconds
	LapTime float64 `json:"lapTime"`
	// average pit stop time in seconds
	PitStopTime float64 `json:"pitStopTime"`
}

// StrategyView is the per strategy output recomputed every tick.
type StrategyView struct {
	Name                string  `json:"name"`
	FuelConsumption     float64 `json:"fuelConsumption"`
	RefuelAmount        float64 `json:"refuelAmount"`
	LapsOfFuelRemaining float64 `json:"lapsOfFuelRemaining"`
}

// FuelSnapshot is the renderable view emitted once per telemetry tick.
// All fields are always populated so consumers can render a stable shape
// even when no lap data exists yet.
type FuelSnapshot struct {
	Strategies [3]StrategyView `json:"strategies"`

	ConsumedFuel      float64 `json:"consumedFuel"`
	CurrentFuelLevel  float64 `json:"currentFuelLevel"`
	LapsCompleted     int     `json:"lapsCompleted"`
	RaceLapsRemaining int     `json:"raceLapsRemaining"`

	AvgPitDuration time.Duration `json:"avgPitDuration"`
	PitDuration    time.Duration `json:"pitDuration"`
	IsTrackingPit  bool          `json:"isTrackingPit"`

	HasResetToPits       bool         `json:"hasResetToPits"`
	IsRollingStart       bool         `json:"isRollingStart"`
	SessionFlag          SessionFlag  `json:"sessionFlag"`
	IsRaceStart          bool         `json:"isRaceStart"`
	CurrentSessionNumber int          `json:"currentSessionNumber"`
	CurrentLap           *Lap         `json:"currentLap,omitempty"`
	TrackSurface         TrackSurface `json:"trackSurface"`
	SessionState         SessionState `json:"sessionState"`
	IsOnPitRoad          bool         `json:"isOnPitRoad"`
	HasBegunService      bool         `json:"hasBegunService"`
	HasCompletedService  bool         `json:"hasCompletedService"`
}
