package fuel

import (
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

// PitLifecycle derives discrete pit events from the raw per tick pit
// signals. The flags are mutated only here (hasResetToPits excepted,
// which the orchestrator owns) and queried by the orchestrator.
type PitLifecycle struct {
	enteredPits     bool // passed the approaching-pits zone
	onPitRoad       bool
	begunService    bool
	finishedService bool
	comingOutOfPits bool
	resetToPits     bool
}

func NewPitLifecycle() *PitLifecycle {
	return &PitLifecycle{}
}

// UpdatePitRoadStatus processes the raw on-pit-road flag together with
// the (quirk corrected) track surface and advances the entry/exit flags.
func (p *PitLifecycle) UpdatePitRoadStatus(
	rawOnPitRoad bool,
	surface model.TrackSurface,
) {
	p.comingOutOfPits = false
	switch {
	case !p.enteredPits && surface == model.SurfaceApproachingPits:
		p.enteredPits = true
	case !p.onPitRoad && rawOnPitRoad:
		p.onPitRoad = true
	case p.onPitRoad && !rawOnPitRoad &&
		surface != model.SurfaceInPitStall &&
		surface != model.SurfaceApproachingPits:

		p.onPitRoad = false
		p.enteredPits = false
		p.comingOutOfPits = true
		p.resetToPits = false
	}
}

// UpdateServiceStatus toggles the begun/finished service flags from the
// raw receiving-service signal. The two flags are never true at the same
// time.
func (p *PitLifecycle) UpdateServiceStatus(receivingService bool) {
	switch {
	case receivingService && !p.begunService:
		p.begunService = true
		p.finishedService = false
	case !receivingService && p.begunService:
		p.begunService = false
		p.finishedService = true
	}
}

// IsResettingToPits reports a manual teleport back to the pits: the
// reset button edge fired while the car was not in a regular pit
// sequence.
func (p *PitLifecycle) IsResettingToPits(resetButton int) bool {
	return resetButton == 1 &&
		!p.enteredPits &&
		!p.begunService &&
		!p.finishedService
}

func (p *PitLifecycle) HasEnteredPits() bool     { return p.enteredPits }
func (p *PitLifecycle) IsOnPitRoad() bool        { return p.onPitRoad }
func (p *PitLifecycle) HasBegunService() bool    { return p.begunService }
func (p *PitLifecycle) HasFinishedService() bool { return p.finishedService }
func (p *PitLifecycle) IsComingOutOfPits() bool  { return p.comingOutOfPits }
func (p *PitLifecycle) HasResetToPits() bool     { return p.resetToPits }

// SetResetToPits is owned by the orchestrator (set on the reset button
// edge, cleared when the relabeled lap crosses the line).
func (p *PitLifecycle) SetResetToPits(v bool) { p.resetToPits = v }

// ClearBegunService acknowledges a handled service-begin event.
func (p *PitLifecycle) ClearBegunService() { p.begunService = false }

// ClearFinishedService acknowledges a handled service-end event.
func (p *PitLifecycle) ClearFinishedService() { p.finishedService = false }

func (p *PitLifecycle) Clear() {
	*p = PitLifecycle{}
}
