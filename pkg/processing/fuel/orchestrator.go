package fuel

import (
	"context"

	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/log"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/processing/session"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/processing/telemetry"
)

// HistoryStore persists per track/car fuel statistics across sessions.
// It is only consulted at connect/disconnect and session info boundaries,
// never on the per tick path.
type HistoryStore interface {
	// Get returns nil,nil when no entry exists for the key.
	Get(ctx context.Context, trackID, carID int) (*model.HistoryEntry, error)
	Upsert(ctx context.Context, entry *model.HistoryEntry) error
}

// DefaultFuelCutoff is the amount of fuel the engine is assumed to need
// so it never runs dry before the line.
const DefaultFuelCutoff = 0.3

// tickBranch labels the mutually exclusive actions of one telemetry
// tick. Exactly one branch is taken per tick, classified in priority
// order.
type tickBranch int

const (
	branchBootstrap tickBranch = iota
	branchRaceStartFlicker
	branchServiceFinished
	branchServiceBegun
	branchResetToPits
	branchFinishLine
	branchSteady
)

func (b tickBranch) String() string {
	switch b {
	case branchBootstrap:
		return "bootstrap"
	case branchRaceStartFlicker:
		return "raceStartFlicker"
	case branchServiceFinished:
		return "serviceFinished"
	case branchServiceBegun:
		return "serviceBegun"
	case branchResetToPits:
		return "resetToPits"
	case branchFinishLine:
		return "finishLine"
	default:
		return "steady"
	}
}

type Option func(*Orchestrator)

func WithHistoryStore(store HistoryStore) Option {
	return func(o *Orchestrator) { o.history = store }
}

func WithFuelCutoff(cutoff float64) Option {
	return func(o *Orchestrator) { o.fuelCutoff = cutoff }
}

// WithPitQuirkThreshold tunes the track fraction below which an
// "approaching pits" surface report is treated as the known pit exit
// misreport and reclassified as on track.
func WithPitQuirkThreshold(threshold float64) Option {
	return func(o *Orchestrator) { o.pitQuirkThreshold = threshold }
}

func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.log = logger }
}

// Orchestrator consumes telemetry samples and session info updates and
// derives the fuel strategy snapshot emitted once per tick. It owns all
// lap/pit/strategy state; callers must deliver events from a single
// goroutine.
type Orchestrator struct {
	log               *log.Logger
	history           HistoryStore
	fuelCutoff        float64
	pitQuirkThreshold float64

	parser      *telemetry.Parser
	sessionMeta *model.SessionSnapshot
	tracker     *LapTracker
	analyzer    *LapAnalyzer
	lifecycle   *PitLifecycle
	meter       *PitDurationMeter
	strategies  []Strategy

	histEntry     *model.HistoryEntry
	lapsRemaining int
	raceStart     bool
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:               log.Default().Named("fuel"),
		fuelCutoff:        DefaultFuelCutoff,
		pitQuirkThreshold: 0.5,
		parser:            telemetry.NewParser(),
		tracker:           NewLapTracker(),
		analyzer:          NewLapAnalyzer(),
		lifecycle:         NewPitLifecycle(),
		meter:             NewPitDurationMeter(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.strategies = []Strategy{
		NewFullRaceStrategy(o.fuelCutoff),
		NewLastLapStrategy(o.fuelCutoff),
		NewFiveLapStrategy(o.fuelCutoff),
	}
	o.sessionMeta = &model.SessionSnapshot{}
	o.sessionMeta.Clear()
	return o
}

// ProcessSessionInfo decodes a session info document and replaces the
// session metadata (most recent value wins). The persisted history entry
// for the new track/car pairing is loaded here, keeping storage I/O off
// the tick path.
func (o *Orchestrator) ProcessSessionInfo(ctx context.Context, raw []byte) error {
	snap, err := session.Parse(raw, o.parser.CurrentSessionNumber)
	if err != nil {
		return err
	}
	o.sessionMeta = snap
	o.loadHistoryEntry(ctx)
	return nil
}

func (o *Orchestrator) loadHistoryEntry(ctx context.Context) {
	if o.history == nil || o.sessionMeta.TrackID == 0 {
		return
	}
	entry, err := o.history.Get(ctx, o.sessionMeta.TrackID, o.sessionMeta.CarID)
	if err != nil {
		o.log.Warn("could not load fuel history",
			log.Int("trackId", o.sessionMeta.TrackID),
			log.Int("carId", o.sessionMeta.CarID),
			log.ErrorField(err))
		return
	}
	o.histEntry = entry
}

// OnConnect emits a neutral snapshot for the freshly attached source.
func (o *Orchestrator) OnConnect(ctx context.Context) *model.FuelSnapshot {
	o.loadHistoryEntry(ctx)
	return o.buildSnapshot(&model.TelemetrySample{})
}

// OnDisconnect persists the session's fuel statistic when it improves on
// what is stored (race session data, or the first entry for this
// track/car), clears all state and emits a neutral snapshot. Persistence
// failures are logged and never block the teardown.
func (o *Orchestrator) OnDisconnect(ctx context.Context) *model.FuelSnapshot {
	if o.history != nil &&
		(o.sessionMeta.SessionType == model.SessionTypeRace || o.histEntry == nil) {
		fullRace := o.strategies[0].View()
		entry := &model.HistoryEntry{
			TrackID:     o.sessionMeta.TrackID,
			CarID:       o.sessionMeta.CarID,
			Consumption: fullRace.FuelConsumption,
			LapCount:    o.tracker.CompletedLapsCount(),
			LapTime:     o.analyzer.GetLapTime(o.parser.PlayerCarIdx).Seconds(),
			PitStopTime: o.meter.AvgPitStopTime().Seconds(),
		}
		if entry.TrackID != 0 && entry.Consumption > 0 {
			if err := o.history.Upsert(ctx, entry); err != nil {
				o.log.Warn("could not persist fuel history",
					log.Int("trackId", entry.TrackID),
					log.Int("carId", entry.CarID),
					log.ErrorField(err))
			}
		}
	}
	o.clearAll()
	return o.buildSnapshot(&model.TelemetrySample{})
}

// ProcessTelemetry runs the per tick decision procedure and returns the
// refreshed view snapshot. Exactly one lap/pit action happens per tick.
func (o *Orchestrator) ProcessTelemetry(sample *model.TelemetrySample) *model.FuelSnapshot {
	o.parser.Process(sample, o.sessionMeta.PaceCarIdx)

	switch {
	case o.isSessionStateValid(sample.SessionState):
		o.analyzer.CollectAllDriversLaps(
			o.sessionMeta.Drivers,
			telemetry.DriversLastLapTimes(
				o.sessionMeta.PaceCarIdx, sample.CarIdxLastLapTime),
			sample.CarIdxLapCompleted)
		o.runFuelCalculations(sample)
	case o.isSessionStateInvalid(sample.SessionState):
		o.log.Debug("session no longer valid, clearing state",
			log.String("state", sample.SessionState.String()),
			log.Bool("switched", o.parser.HasSwitchedSessions))
		o.clearAll()
	case !sample.IsOnTrack && sample.IsReplayPlaying &&
		o.tracker.CurrentLap() != nil:
		// replay scrubbing mid lap, the data is useless
		o.tracker.ResetCurrentLap()
	}

	for _, s := range o.strategies {
		s.UpdateLapsOfFuelRemaining(sample.FuelLevel)
	}
	return o.buildSnapshot(sample)
}

func (o *Orchestrator) isSessionStateValid(state model.SessionState) bool {
	return state == model.SessionStateRacing ||
		state == model.SessionStateGetInCar ||
		state == model.SessionStateParadeLaps ||
		state == model.SessionStateCheckered
}

func (o *Orchestrator) isSessionStateInvalid(state model.SessionState) bool {
	return o.parser.HasSwitchedSessions ||
		state == model.SessionStateCoolDown ||
		state == model.SessionStateInvalid ||
		state == model.SessionStateWarmup
}

func (o *Orchestrator) runFuelCalculations(sample *model.TelemetrySample) {
	surface := o.correctedSurface(sample)

	o.lifecycle.UpdatePitRoadStatus(sample.IsOnPitRoad, surface)
	o.lifecycle.UpdateServiceStatus(sample.IsReceivingService)
	o.updatePitTimer(sample, surface)

	branch := o.classifyTick(sample)
	o.log.Debug("tick", log.Stringer("branch", branch),
		log.Int("lapNo", sample.CurrentLapNumber),
		log.Float64("fuel", sample.FuelLevel))

	switch branch {
	case branchBootstrap:
		o.bootstrap(sample)
	case branchRaceStartFlicker:
		// lap counter flips 0 -> 1 -> 2 within a few ticks at the
		// race start; ignore the glitched crossing
		o.raceStart = false
	case branchServiceFinished:
		o.onServiceFinished(sample)
	case branchServiceBegun:
		o.onServiceBegun(sample)
	case branchResetToPits:
		o.onResetToPits(sample)
	case branchFinishLine:
		o.onFinishLine(sample)
	case branchSteady:
		o.recomputeFuelAndLaps(sample)
	}
}

// correctedSurface works around a known telemetry quirk: leaving the
// pits is sometimes reported as "approaching pits". A car that is not on
// pit road early in the lap cannot be approaching them.
func (o *Orchestrator) correctedSurface(sample *model.TelemetrySample) model.TrackSurface {
	if sample.TrackSurface == model.SurfaceApproachingPits &&
		!sample.IsOnPitRoad &&
		o.parser.PlayerTrackPct < o.pitQuirkThreshold {
		return model.SurfaceOnTrack
	}
	return sample.TrackSurface
}

func (o *Orchestrator) updatePitTimer(
	sample *model.TelemetrySample, surface model.TrackSurface,
) {
	cur := o.tracker.CurrentLap()
	switch {
	case surface == model.SurfaceApproachingPits &&
		!o.meter.IsTracking() && !sample.IsOnPitRoad:

		o.meter.Start(sample.SessionTimeRemaining)
		if cur != nil {
			cur.IsInLap = true
		}
	case o.meter.IsTracking() &&
		o.parser.PlayerTrackPct < 0.5 &&
		o.parser.PlayerTrackPct > o.firstSectorBoundary():

		o.meter.Stop(sample.SessionTimeRemaining)
		if cur != nil {
			cur.IsInLap = false
			cur.IsOutLap = true
		}
	}
}

// firstSectorBoundary is the start of the second timing sector, past
// which a car leaving the pits has definitely rejoined the track.
func (o *Orchestrator) firstSectorBoundary() float64 {
	if len(o.sessionMeta.Sectors) > 1 {
		return o.sessionMeta.Sectors[1].StartPct
	}
	return 0
}

func (o *Orchestrator) classifyTick(sample *model.TelemetrySample) tickBranch {
	cur := o.tracker.CurrentLap()
	switch {
	case cur == nil:
		return branchBootstrap
	case o.raceStart && sample.CurrentLapNumber == 2:
		return branchRaceStartFlicker
	case o.lifecycle.HasFinishedService():
		return branchServiceFinished
	case o.lifecycle.HasBegunService():
		return branchServiceBegun
	case o.lifecycle.IsResettingToPits(sample.EnterExitResetButton):
		return branchResetToPits
	case sample.CurrentLapNumber > cur.Number &&
		sample.SessionState != model.SessionStateParadeLaps:
		return branchFinishLine
	default:
		return branchSteady
	}
}

// bootstrap starts the very first lap of a session. When a persisted
// statistic exists for this track/car it is turned into one synthetic
// completed lap so projections and strategies produce numbers before the
// first live lap closes.
func (o *Orchestrator) bootstrap(sample *model.TelemetrySample) {
	if sample.FuelLevel == 0 || o.sessionMeta.TrackID == 0 {
		return
	}

	if o.histEntry != nil && o.histEntry.Consumption > 0 {
		o.tracker.StartWithHistory(sample.CurrentLapNumber-1, o.histEntry)
		histLapTime := durationFromSeconds(o.histEntry.LapTime)
		o.lapsRemaining = LapsRemainingByTime(
			o.parser.PlayerTrackPct, sample.SessionTimeRemaining, histLapTime)
		for _, s := range o.strategies {
			s.Calculate(o.tracker.PlayerLaps(), o.lapsRemaining)
		}
	}

	o.tracker.StartNewLap(sample.CurrentLapNumber, sample.FuelLevel)
	o.tracker.CurrentLap().IsOutLap = true

	if o.isRaceStart(sample) {
		o.raceStart = true
	}
}

func (o *Orchestrator) isRaceStart(sample *model.TelemetrySample) bool {
	return (sample.SessionState == model.SessionStateRacing ||
		sample.SessionState == model.SessionStateParadeLaps) &&
		sample.CurrentLapNumber == 0 &&
		o.sessionMeta.SessionType == model.SessionTypeRace
}

// onServiceFinished opens the out lap with the freshly topped up tank.
// When the car already crossed the line while being serviced the tracked
// number has to skip ahead.
func (o *Orchestrator) onServiceFinished(sample *model.TelemetrySample) {
	lapNumber := sample.CurrentLapNumber
	if o.parser.PlayerTrackPct > 0.5 {
		lapNumber++
	}
	o.tracker.StartNewLap(lapNumber, sample.FuelLevel)
	cur := o.tracker.CurrentLap()
	cur.IsOutLap = true

	for _, s := range o.strategies {
		s.UpdateRefuel(cur.StartingFuel, o.lapsRemaining)
	}
	o.lifecycle.ClearFinishedService()
}

// onServiceBegun closes the in lap. A stop under the repair flag only
// fixes damage and does not end the lap.
func (o *Orchestrator) onServiceBegun(sample *model.TelemetrySample) {
	if sample.SessionFlag != model.FlagRepair {
		o.tracker.CompleteCurrentLap(sample.FuelLevel, sample.LastLapTime)
	}
	o.recomputeFuelAndLaps(sample)
	o.lifecycle.ClearBegunService()
}

// onResetToPits handles the manual tow back to the pit stall. The
// in-progress lap is rebased on the post-reset fuel level; it gets
// relabeled once the car crosses the line again.
func (o *Orchestrator) onResetToPits(sample *model.TelemetrySample) {
	cur := o.tracker.CurrentLap()
	cur.StartingFuel = sample.FuelLevel
	cur.IsInLap = false
	cur.IsOutLap = true
	o.lifecycle.SetResetToPits(true)

	for _, s := range o.strategies {
		s.UpdateRefuel(cur.StartingFuel, o.lapsRemaining)
	}
}

func (o *Orchestrator) onFinishLine(sample *model.TelemetrySample) {
	cur := o.tracker.CurrentLap()
	if !o.lifecycle.IsOnPitRoad() {
		// lap number 0 is the placeholder before the first crossing
		if cur.Number != 0 {
			o.tracker.CompleteCurrentLap(sample.FuelLevel, sample.LastLapTime)
		}
		o.tracker.StartNewLap(sample.CurrentLapNumber, sample.FuelLevel)
	} else if o.lifecycle.HasResetToPits() {
		// the tow crossed the line virtually; keep the lap, fix its
		// number and drop the unreliable pit timing
		cur.Number = sample.CurrentLapNumber
		o.lifecycle.SetResetToPits(false)
		o.meter.Reset()
	}
	o.recomputeFuelAndLaps(sample)
}

// recomputeFuelAndLaps refreshes the laps remaining projection from the
// relevant leader and reruns all strategies over the completed laps.
func (o *Orchestrator) recomputeFuelAndLaps(sample *model.TelemetrySample) {
	leaderIdx := o.findLeader()

	switch {
	case o.sessionMeta.SessionLaps > 0:
		leaderCompleted := 0
		if leaderIdx >= 0 && leaderIdx < len(sample.CarIdxLapCompleted) {
			leaderCompleted = sample.CarIdxLapCompleted[leaderIdx]
		}
		o.lapsRemaining = LapsRemainingByLaps(
			o.sessionMeta.SessionLaps, leaderCompleted)
	case leaderIdx >= 0:
		leaderAvg := o.analyzer.GetLapTime(leaderIdx)
		if leaderAvg > 0 {
			if o.sessionMeta.IsMultiClassRace {
				o.lapsRemaining = LapsRemainingMultiClass(
					o.parser.PlayerTrackPct,
					o.parser.TrackPct(leaderIdx),
					sample.SessionTimeRemaining,
					o.analyzer.GetLapTime(o.parser.PlayerCarIdx),
					leaderAvg,
					sample.SessionFlag)
			} else {
				o.lapsRemaining = LapsRemainingByTime(
					o.parser.TrackPct(leaderIdx),
					sample.SessionTimeRemaining,
					leaderAvg)
			}
		} else if o.histEntry != nil {
			// no live lap times yet, project from the persisted
			// statistic
			o.lapsRemaining = LapsRemainingByTime(
				o.parser.PlayerTrackPct,
				sample.SessionTimeRemaining,
				durationFromSeconds(o.histEntry.LapTime))
		}
	}

	for _, s := range o.strategies {
		s.Calculate(o.tracker.PlayerLaps(), o.lapsRemaining)
	}
}

// findLeader picks whose pace bounds the projection: the player outside
// race sessions, the class leader in a single class race, the overall
// leader in a multi class race.
func (o *Orchestrator) findLeader() int {
	switch {
	case o.sessionMeta.SessionType != model.SessionTypeRace:
		return o.parser.PlayerCarIdx
	case o.sessionMeta.IsMultiClassRace:
		return o.analyzer.GetLeaderIdx(o.parser.PositionInRace)
	default:
		return o.analyzer.GetLeaderIdx(o.parser.PositionInClass)
	}
}

func (o *Orchestrator) buildSnapshot(sample *model.TelemetrySample) *model.FuelSnapshot {
	completed := o.tracker.PlayerLaps()
	// the snapshot crosses goroutines, so it must not alias the live lap
	var currentLap *model.Lap
	if l := o.tracker.CurrentLap(); l != nil {
		lap := *l
		currentLap = &lap
	}
	snap := &model.FuelSnapshot{
		ConsumedFuel: lo.SumBy(completed,
			func(l *model.Lap) float64 { return l.FuelUsed }),
		CurrentFuelLevel:  sample.FuelLevel,
		LapsCompleted:     len(completed),
		RaceLapsRemaining: o.lapsRemaining,

		AvgPitDuration: o.meter.AvgPitStopTime(),
		PitDuration:    o.meter.Duration(),
		IsTrackingPit:  o.meter.IsTracking(),

		HasResetToPits:       o.lifecycle.HasResetToPits(),
		IsRollingStart:       o.sessionMeta.StartType == model.StartTypeRolling,
		SessionFlag:          sample.SessionFlag,
		IsRaceStart:          o.raceStart,
		CurrentSessionNumber: o.parser.CurrentSessionNumber,
		CurrentLap:           currentLap,
		TrackSurface:         sample.TrackSurface,
		SessionState:         sample.SessionState,
		IsOnPitRoad:          o.lifecycle.IsOnPitRoad(),
		HasBegunService:      o.lifecycle.HasBegunService(),
		HasCompletedService:  o.lifecycle.HasFinishedService(),
	}
	for i, s := range o.strategies {
		snap.Strategies[i] = s.View()
	}
	return snap
}

func (o *Orchestrator) clearAll() {
	o.lapsRemaining = 0
	o.raceStart = false
	o.histEntry = nil

	o.sessionMeta.Clear()
	o.parser.Clear()
	o.tracker.Clear()
	o.analyzer.Clear()
	o.lifecycle.Clear()
	o.meter.Clear()
	for _, s := range o.strategies {
		s.Clear()
	}
}
