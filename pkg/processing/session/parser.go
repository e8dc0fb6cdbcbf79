// Package session decodes the simulator's session info document (YAML)
// into the slowly changing metadata the fuel processing consumes.
package session

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
)

// wire structure of the session info document. Only the subset we
// consume is mapped.
//
//nolint:tagliatelle // keys are dictated by the simulator
type sessionInfoDoc struct {
	WeekendInfo struct {
		TrackID        int `yaml:"TrackID"`
		NumCarClasses  int `yaml:"NumCarClasses"`
		WeekendOptions struct {
			StandingStart int `yaml:"StandingStart"`
		} `yaml:"WeekendOptions"`
	} `yaml:"WeekendInfo"`
	DriverInfo struct {
		DriverCarIdx int `yaml:"DriverCarIdx"`
		PaceCarIdx   int `yaml:"PaceCarIdx"`
		Drivers      []struct {
			CarIdx       int    `yaml:"CarIdx"`
			UserName     string `yaml:"UserName"`
			CarID        int    `yaml:"CarID"`
			CarClassID   int    `yaml:"CarClassID"`
			CarIsPaceCar int    `yaml:"CarIsPaceCar"`
		} `yaml:"Drivers"`
	} `yaml:"DriverInfo"`
	SplitTimeInfo struct {
		Sectors []struct {
			SectorNum      int     `yaml:"SectorNum"`
			SectorStartPct float64 `yaml:"SectorStartPct"`
		} `yaml:"Sectors"`
	} `yaml:"SplitTimeInfo"`
	SessionInfo struct {
		Sessions []struct {
			SessionNum  int    `yaml:"SessionNum"`
			SessionType string `yaml:"SessionType"`
			SessionLaps string `yaml:"SessionLaps"`
		} `yaml:"Sessions"`
	} `yaml:"SessionInfo"`
}

// Parse decodes raw into a SessionSnapshot. currentSessionNum selects the
// active entry of the sessions list; unknown numbers yield the zero
// session type and no lap limit.
func Parse(raw []byte, currentSessionNum int) (*model.SessionSnapshot, error) {
	var doc sessionInfoDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding session info: %w", err)
	}

	snap := &model.SessionSnapshot{
		TrackID:          doc.WeekendInfo.TrackID,
		PaceCarIdx:       doc.DriverInfo.PaceCarIdx,
		IsMultiClassRace: doc.WeekendInfo.NumCarClasses > 1,
		StartType:        model.StartTypeStanding,
		Drivers:          make(map[int]model.Driver),
	}
	if doc.WeekendInfo.WeekendOptions.StandingStart == 0 {
		snap.StartType = model.StartTypeRolling
	}

	for i := range doc.DriverInfo.Drivers {
		d := &doc.DriverInfo.Drivers[i]
		if d.CarIsPaceCar == 1 {
			continue
		}
		snap.Drivers[d.CarIdx] = model.Driver{
			CarIdx:     d.CarIdx,
			Name:       d.UserName,
			CarID:      d.CarID,
			CarClassID: d.CarClassID,
		}
		if d.CarIdx == doc.DriverInfo.DriverCarIdx {
			snap.CarID = d.CarID
		}
	}

	snap.Sectors = make([]model.Sector, 0, len(doc.SplitTimeInfo.Sectors))
	for _, s := range doc.SplitTimeInfo.Sectors {
		snap.Sectors = append(snap.Sectors,
			model.Sector{Num: s.SectorNum, StartPct: s.SectorStartPct})
	}
	sort.Slice(snap.Sectors, func(i, j int) bool {
		return snap.Sectors[i].StartPct < snap.Sectors[j].StartPct
	})

	for _, s := range doc.SessionInfo.Sessions {
		if s.SessionNum != currentSessionNum {
			continue
		}
		snap.SessionType = parseSessionType(s.SessionType)
		if laps, err := strconv.Atoi(s.SessionLaps); err == nil {
			snap.SessionLaps = laps
		}
		// non numeric values ("unlimited") keep the 0 default
	}
	return snap, nil
}

func parseSessionType(arg string) model.SessionType {
	switch arg {
	case "Practice", "Open Practice", "Warmup":
		return model.SessionTypePractice
	case "Qualify", "Lone Qualify", "Open Qualify":
		return model.SessionTypeQualify
	case "Race":
		return model.SessionTypeRace
	default:
		return model.SessionTypeUnknown
	}
}
