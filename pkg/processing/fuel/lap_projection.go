package fuel

import (
	"math"
	"time"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

func durationFromSeconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// LapsRemainingByLaps projects laps remaining in a lap limited session.
// The result may be negative when the leader already passed the session
// lap count (extra formation laps etc.); callers clamp where needed.
func LapsRemainingByLaps(sessionLaps, leaderLapsCompleted int) int {
	return sessionLaps - leaderLapsCompleted
}

// LapsRemainingByTime projects the laps the player still has to run in a
// time limited session. trackPct is the fraction of the current lap
// already covered, avgLap the player's average lap time.
func LapsRemainingByTime(
	trackPct float64,
	timeRemaining, avgLap time.Duration,
) int {
	if timeRemaining <= 0 || avgLap <= 0 {
		return 0
	}
	remainder := timeRemaining.Seconds() - (1-trackPct)*avgLap.Seconds()
	laps := remainder/avgLap.Seconds() + 1
	if laps <= 0 {
		return 0
	}
	return int(math.Ceil(laps))
}

// LapsRemainingMultiClass projects laps remaining for the player in a
// multi class, time limited race. The race ends when the overall leader
// finishes, so the player's remaining distance is bounded by the time the
// leader needs to complete their own projected laps.
func LapsRemainingMultiClass(
	playerTrackPct, leaderTrackPct float64,
	timeRemaining time.Duration,
	playerAvgLap, leaderAvgLap time.Duration,
	flags model.SessionFlag,
) int {
	if leaderAvgLap <= 0 {
		return 0
	}
	timeToCompleteLeaderLap :=
		time.Duration((1 - leaderTrackPct) * float64(leaderAvgLap))
	timeAfterLineCross := timeRemaining - timeToCompleteLeaderLap
	if timeAfterLineCross <= 0 {
		// leader takes the white or checkered flag on this lap
		if flags&model.FlagGreen != 0 {
			return 2
		}
		return 1
	}
	if leaderAvgLap > timeAfterLineCross {
		// not enough time for a full extra leader lap; stretch the
		// window so the leader's final lap still counts
		timeRemaining += leaderAvgLap - timeAfterLineCross
	}
	leaderLaps := LapsRemainingByTime(leaderTrackPct, timeRemaining, leaderAvgLap)
	timeRequiredForLeader := time.Duration(leaderLaps) * leaderAvgLap
	return LapsRemainingByTime(playerTrackPct, timeRequiredForLeader, playerAvgLap)
}
