package model

import "time"

// TelemetrySample holds the decoded per tick values the fuel processing
// consumes. It is delivered once per tick by the telemetry source and is
// treated as read only by all consumers.
type TelemetrySample struct {
	SessionNum           int           `json:"sessionNum"`
	SessionState         SessionState  `json:"sessionState"`
	SessionFlag          SessionFlag   `json:"sessionFlag"`
	SessionTimeRemaining time.Duration `json:"sessionTimeRemaining"`

	PlayerCarIdx     int           `json:"playerCarIdx"`
	CurrentLapNumber int           `json:"currentLapNumber"`
	FuelLevel        float64       `json:"fuelLevel"`
	LastLapTime      time.Duration `json:"lastLapTime"`
	TrackSurface     TrackSurface  `json:"trackSurface"`

	IsOnTrack          bool `json:"isOnTrack"`
	IsOnPitRoad        bool `json:"isOnPitRoad"`
	IsReceivingService bool `json:"isReceivingService"`
	IsReplayPlaying    bool `json:"isReplayPlaying"`

	// 1 while the in-sim "tow/reset to pits" control is pressed
	EnterExitResetButton int `json:"enterExitResetButton"`

	CarIdxTrackPct     []float64       `json:"carIdxTrackPct"`
	CarIdxLastLapTime  []time.Duration `json:"carIdxLastLapTime"`
	CarIdxLapCompleted []int           `json:"carIdxLapCompleted"`
	CarIdxPosition     []int           `json:"carIdxPosition"`
	CarIdxClass        []int           `json:"carIdxClass"`
}

// PlayerTrackPct returns the player's fractional position on track.
func (s *TelemetrySample) PlayerTrackPct() float64 {
	if s.PlayerCarIdx >= 0 && s.PlayerCarIdx < len(s.CarIdxTrackPct) {
		return s.CarIdxTrackPct[s.PlayerCarIdx]
	}
	return 0
}
