package fuel

import (
	"time"

	"github.com/samber/lo"
)

// PitDurationMeter measures pit stop durations from the session time
// remaining signal (which counts down, so duration = start - stop).
type PitDurationMeter struct {
	tracking     bool
	startRemain  time.Duration
	lastDuration time.Duration
	history      []time.Duration
}

func NewPitDurationMeter() *PitDurationMeter {
	return &PitDurationMeter{history: make([]time.Duration, 0)}
}

// Start records the session time at pit entry and begins tracking.
func (m *PitDurationMeter) Start(sessionTimeRemaining time.Duration) {
	m.startRemain = sessionTimeRemaining
	m.tracking = true
}

// Stop ends the measurement and appends the duration to the history. A
// stop without a valid preceding start leaves everything untouched.
func (m *PitDurationMeter) Stop(sessionTimeRemaining time.Duration) {
	if m.startRemain <= 0 {
		return
	}
	m.lastDuration = m.startRemain - sessionTimeRemaining
	m.history = append(m.history, m.lastDuration)
	m.startRemain = 0
	m.tracking = false
}

// Reset abandons an in-flight measurement without touching the history.
// Used when the entry/exit pair is known to be unreliable (reset to
// pits).
func (m *PitDurationMeter) Reset() {
	m.tracking = false
	m.startRemain = 0
}

func (m *PitDurationMeter) IsTracking() bool { return m.tracking }

// Duration returns the most recently completed measurement.
func (m *PitDurationMeter) Duration() time.Duration { return m.lastDuration }

// AvgPitStopTime returns the mean over all recorded stops, zero when no
// stop has been recorded yet.
func (m *PitDurationMeter) AvgPitStopTime() time.Duration {
	if len(m.history) == 0 {
		return 0
	}
	sum := lo.Sum(m.history)
	return sum / time.Duration(len(m.history))
}

func (m *PitDurationMeter) Clear() {
	m.tracking = false
	m.startRemain = 0
	m.lastDuration = 0
	m.history = m.history[:0]
}
