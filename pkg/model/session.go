package model

// Driver describes one entry of the session roster.
type Driver struct {
	CarIdx     int    `json:"carIdx"`
	Name       string `json:"name"`
	CarID      int    `json:"carId"`
	CarClassID int    `json:"carClassId"`
}

// Sector is a timing sector boundary, ordered by start position.
type Sector struct {
	Num      int     `json:"num"`
	StartPct float64 `json:"startPct"`
}

// SessionSnapshot holds the slowly changing session metadata derived from
// the session info document. It is replaced wholesale on every session
// info update; most recent value wins.
type SessionSnapshot struct {
	TrackID     int
	CarID       int
	SessionType SessionType
	// 0 for time limited sessions
	SessionLaps      int
	PaceCarIdx       int
	IsMultiClassRace bool
	StartType        StartType
	Sectors          []Sector
	Drivers          map[int]Driver
}

func (s *SessionSnapshot) Clear() {
	*s = SessionSnapshot{PaceCarIdx: -1, Drivers: map[int]Driver{}}
}
