// Package telemetry derives lightweight per tick values from a raw
// telemetry sample: player indices, track positions and the
// position -> carIdx rankings the fuel processing needs.
package telemetry

import (
	"time"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

type Parser struct {
	PlayerCarIdx         int
	PlayerCarClassID     int
	CurrentSessionNumber int
	// true for exactly the ticks on which the session number changed
	HasSwitchedSessions bool

	PlayerTrackPct float64
	CarIdxTrackPct []float64

	// position (1-based) -> carIdx
	PositionInClass map[int]int
	PositionInRace  map[int]int
}

func NewParser() *Parser {
	return &Parser{
		PlayerCarIdx:    -1,
		PositionInClass: make(map[int]int),
		PositionInRace:  make(map[int]int),
	}
}

// Process updates all derived values from the given sample. Pure data
// preparation, no lap or pit state is touched here.
func (p *Parser) Process(sample *model.TelemetrySample, paceCarIdx int) {
	p.parseSessionNumber(sample.SessionNum)
	p.PlayerCarIdx = sample.PlayerCarIdx
	if p.PlayerCarIdx >= 0 && p.PlayerCarIdx < len(sample.CarIdxClass) {
		p.PlayerCarClassID = sample.CarIdxClass[p.PlayerCarIdx]
	}
	p.CarIdxTrackPct = sample.CarIdxTrackPct
	p.PlayerTrackPct = sample.PlayerTrackPct()
	p.parsePositionsInPlayerClass(sample, paceCarIdx)
	p.parsePositionsWholeRace(sample, paceCarIdx)
}

func (p *Parser) parseSessionNumber(num int) {
	switch {
	case p.CurrentSessionNumber != num:
		p.HasSwitchedSessions = true
	case p.HasSwitchedSessions:
		p.HasSwitchedSessions = false
	}
	p.CurrentSessionNumber = num
}

func (p *Parser) parsePositionsWholeRace(sample *model.TelemetrySample, paceCarIdx int) {
	for idx, pos := range sample.CarIdxPosition {
		if idx == paceCarIdx {
			continue
		}
		if pos > 0 {
			p.PositionInRace[pos] = idx
		}
	}
}

func (p *Parser) parsePositionsInPlayerClass(
	sample *model.TelemetrySample, paceCarIdx int,
) {
	for idx, classID := range sample.CarIdxClass {
		if idx == paceCarIdx || classID != p.PlayerCarClassID {
			continue
		}
		if idx < len(sample.CarIdxPosition) {
			if pos := sample.CarIdxPosition[idx]; pos > 0 {
				p.PositionInClass[pos] = idx
			}
		}
	}
}

func (p *Parser) TrackPct(carIdx int) float64 {
	if carIdx >= 0 && carIdx < len(p.CarIdxTrackPct) {
		return p.CarIdxTrackPct[carIdx]
	}
	return 0
}

func (p *Parser) Clear() {
	p.PlayerCarIdx = -1
	p.PlayerCarClassID = 0
	p.CurrentSessionNumber = 0
	p.HasSwitchedSessions = false
	p.PlayerTrackPct = 0
	p.CarIdxTrackPct = nil
	clear(p.PositionInClass)
	clear(p.PositionInRace)
}

// DriversLastLapTimes maps carIdx -> last lap time, skipping the pace car.
func DriversLastLapTimes(paceCarIdx int, lapTimes []time.Duration) map[int]time.Duration {
	ret := make(map[int]time.Duration, len(lapTimes))
	for idx, lapTime := range lapTimes {
		if idx == paceCarIdx {
			continue
		}
		ret[idx] = lapTime
	}
	return ret
}
