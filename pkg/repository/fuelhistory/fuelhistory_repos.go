package fuelhistory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/repository"
)

// Upsert replaces the stored statistic for the entry's track/car pairing.
func Upsert(
	ctx context.Context,
	conn repository.Querier,
	entry *model.HistoryEntry,
) error {
	_, err := conn.Exec(ctx, `
insert into fuel_history (track_id, car_id, consumption, lap_count, lap_time, pit_stop_time)
values ($1,$2,$3,$4,$5,$6)
on conflict (track_id, car_id) do update
set consumption=$3, lap_count=$4, lap_time=$5, pit_stop_time=$6`,
		entry.TrackID, entry.CarID,
		entry.Consumption, entry.LapCount, entry.LapTime, entry.PitStopTime)
	if err != nil {
		return err
	}
	return nil
}

// LoadByKey returns the statistic for track/car, nil when none is stored.
func LoadByKey(
	ctx context.Context,
	conn repository.Querier,
	trackID, carID int,
) (*model.HistoryEntry, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where track_id=$1 and car_id=$2", selector),
		trackID, carID)
	var item model.HistoryEntry
	if err := scan(&item, row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByKey(
	ctx context.Context,
	conn repository.Querier,
	trackID, carID int,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from fuel_history where track_id=$1 and car_id=$2",
		trackID, carID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func LoadAll(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.HistoryEntry, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s order by track_id, car_id", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.HistoryEntry, 0)
	for rows.Next() {
		var item model.HistoryEntry
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// little helper
const selector = string(`
select track_id, car_id, consumption, lap_count, lap_time, pit_stop_time
from fuel_history`)

func scan(e *model.HistoryEntry, row pgx.Row) error {
	return row.Scan(&e.TrackID, &e.CarID,
		&e.Consumption, &e.LapCount, &e.LapTime, &e.PitStopTime)
}
