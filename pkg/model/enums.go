package model

// SessionState is the simulator's high level session phase.
type SessionState int

const (
	SessionStateInvalid SessionState = iota
	SessionStateGetInCar
	SessionStateWarmup
	SessionStateParadeLaps
	SessionStateRacing
	SessionStateCheckered
	SessionStateCoolDown
)

func (s SessionState) String() string {
	switch s {
	case SessionStateInvalid:
		return "Invalid"
	case SessionStateGetInCar:
		return "GetInCar"
	case SessionStateWarmup:
		return "Warmup"
	case SessionStateParadeLaps:
		return "ParadeLaps"
	case SessionStateRacing:
		return "Racing"
	case SessionStateCheckered:
		return "Checkered"
	case SessionStateCoolDown:
		return "CoolDown"
	default:
		return "Unknown"
	}
}

// TrackSurface is the coarse location classification reported per car.
// Values match the simulator's surface enum.
type TrackSurface int

const (
	SurfaceNotInWorld      TrackSurface = -1
	SurfaceOffTrack        TrackSurface = 0
	SurfaceInPitStall      TrackSurface = 1
	SurfaceApproachingPits TrackSurface = 2
	SurfaceOnTrack         TrackSurface = 3
)

func (t TrackSurface) String() string {
	switch t {
	case SurfaceNotInWorld:
		return "NotInWorld"
	case SurfaceOffTrack:
		return "OffTrack"
	case SurfaceInPitStall:
		return "InPitStall"
	case SurfaceApproachingPits:
		return "ApproachingPits"
	case SurfaceOnTrack:
		return "OnTrack"
	default:
		return "Unknown"
	}
}

// SessionFlag carries the condition the session is currently run under.
type SessionFlag uint32

const (
	FlagNone      SessionFlag = 0
	FlagGreen     SessionFlag = 1 << 2
	FlagYellow    SessionFlag = 1 << 3
	FlagCheckered SessionFlag = 1 << 0
	FlagWhite     SessionFlag = 1 << 1
	FlagRepair    SessionFlag = 1 << 17
)

func (f SessionFlag) String() string {
	switch f {
	case FlagGreen:
		return "Green"
	case FlagYellow:
		return "Yellow"
	case FlagCheckered:
		return "Checkered"
	case FlagWhite:
		return "White"
	case FlagRepair:
		return "Repair"
	default:
		return "None"
	}
}

type SessionType int

const (
	SessionTypeUnknown SessionType = iota
	SessionTypePractice
	SessionTypeQualify
	SessionTypeRace
)

func (s SessionType) String() string {
	switch s {
	case SessionTypePractice:
		return "Practice"
	case SessionTypeQualify:
		return "Qualify"
	case SessionTypeRace:
		return "Race"
	default:
		return "Unknown"
	}
}

type StartType int

const (
	StartTypeStanding StartType = iota
	StartTypeRolling
)

func (s StartType) String() string {
	if s == StartTypeRolling {
		return "Rolling"
	}
	return "Standing"
}
