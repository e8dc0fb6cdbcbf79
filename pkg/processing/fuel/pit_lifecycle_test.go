package fuel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

func TestPitLifecycleEntrySequence(t *testing.T) {
	p := NewPitLifecycle()

	p.UpdatePitRoadStatus(false, model.SurfaceApproachingPits)
	assert.True(t, p.HasEnteredPits())
	assert.False(t, p.IsOnPitRoad())

	p.UpdatePitRoadStatus(true, model.SurfaceApproachingPits)
	assert.True(t, p.IsOnPitRoad())

	p.UpdatePitRoadStatus(true, model.SurfaceInPitStall)
	assert.True(t, p.IsOnPitRoad())
}

func TestPitLifecycleExit(t *testing.T) {
	p := NewPitLifecycle()
	p.UpdatePitRoadStatus(false, model.SurfaceApproachingPits)
	p.UpdatePitRoadStatus(true, model.SurfaceApproachingPits)

	// leaving the stall but still inside the pit area: no exit yet
	p.UpdatePitRoadStatus(false, model.SurfaceInPitStall)
	assert.True(t, p.IsOnPitRoad())
	assert.False(t, p.IsComingOutOfPits())

	p.UpdatePitRoadStatus(false, model.SurfaceOnTrack)
	assert.False(t, p.IsOnPitRoad())
	assert.False(t, p.HasEnteredPits())
	assert.True(t, p.IsComingOutOfPits())

	// the exit pulse lasts exactly one tick
	p.UpdatePitRoadStatus(false, model.SurfaceOnTrack)
	assert.False(t, p.IsComingOutOfPits())
}

func TestPitLifecycleExitClearsResetToPits(t *testing.T) {
	p := NewPitLifecycle()
	p.SetResetToPits(true)
	p.UpdatePitRoadStatus(false, model.SurfaceApproachingPits)
	p.UpdatePitRoadStatus(true, model.SurfaceApproachingPits)

	p.UpdatePitRoadStatus(false, model.SurfaceOnTrack)

	assert.False(t, p.HasResetToPits())
}

func TestPitLifecycleServiceToggle(t *testing.T) {
	p := NewPitLifecycle()

	p.UpdateServiceStatus(true)
	assert.True(t, p.HasBegunService())
	assert.False(t, p.HasFinishedService())

	// holding the signal changes nothing
	p.UpdateServiceStatus(true)
	assert.True(t, p.HasBegunService())

	p.UpdateServiceStatus(false)
	assert.False(t, p.HasBegunService())
	assert.True(t, p.HasFinishedService())

	p.UpdateServiceStatus(false)
	assert.True(t, p.HasFinishedService())
}

func TestPitLifecycleServiceAcks(t *testing.T) {
	p := NewPitLifecycle()

	p.UpdateServiceStatus(true)
	p.ClearBegunService()
	assert.False(t, p.HasBegunService())

	p.UpdateServiceStatus(true)
	p.UpdateServiceStatus(false)
	p.ClearFinishedService()
	assert.False(t, p.HasFinishedService())
}

func TestIsResettingToPits(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(p *PitLifecycle)
		button  int
		want    bool
	}{
		{"button pressed on track", func(*PitLifecycle) {}, 1, true},
		{"button released", func(*PitLifecycle) {}, 0, false},
		{
			"already entered pits",
			func(p *PitLifecycle) {
				p.UpdatePitRoadStatus(false, model.SurfaceApproachingPits)
			},
			1, false,
		},
		{
			"service in progress",
			func(p *PitLifecycle) { p.UpdateServiceStatus(true) },
			1, false,
		},
		{
			"service finished",
			func(p *PitLifecycle) {
				p.UpdateServiceStatus(true)
				p.UpdateServiceStatus(false)
			},
			1, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPitLifecycle()
			tt.prepare(p)
			assert.Equal(t, tt.want, p.IsResettingToPits(tt.button))
		})
	}
}

func TestPitLifecycleClear(t *testing.T) {
	p := NewPitLifecycle()
	p.UpdatePitRoadStatus(false, model.SurfaceApproachingPits)
	p.UpdatePitRoadStatus(true, model.SurfaceApproachingPits)
	p.UpdateServiceStatus(true)
	p.SetResetToPits(true)

	p.Clear()

	assert.False(t, p.HasEnteredPits())
	assert.False(t, p.IsOnPitRoad())
	assert.False(t, p.HasBegunService())
	assert.False(t, p.HasFinishedService())
	assert.False(t, p.HasResetToPits())
}
