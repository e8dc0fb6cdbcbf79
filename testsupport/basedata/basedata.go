package basedata

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/repository/fuelhistory"
)

func SampleHistoryEntry() *model.HistoryEntry {
	return &model.HistoryEntry{
		TrackID:     18,
		CarID:       77,
		Consumption: 2.5,
		LapCount:    12,
		LapTime:     95.5,
		PitStopTime: 42.0,
	}
}

func CreateSampleHistoryEntry(db *pgxpool.Pool) *model.HistoryEntry {
	ctx := context.Background()
	sample := SampleHistoryEntry()
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return fuelhistory.Upsert(ctx, tx, sample)
	})
	if err != nil {
		log.Fatalf("createSampleHistoryEntry: %v\n", err)
	}
	return sample
}
