package repositories

import (
	"context"
	"fmt"

	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AirportRepository handles airport table operations
type AirportRepository struct {
	db *gorm.DB
}

// NewAirportRepository creates a new airport repository
func NewAirportRepository(db *gorm.DB) *AirportRepository {
	return &AirportRepository{db: db}
}

// FindByICAO finds an airport by ICAO code (case-insensitive)
func (r *AirportRepository) FindByICAO(ctx context.Context, icao string) (*gormModels.Airport, error) {
	var airport gormModels.Airport

	err := r.db.WithContext(ctx).
		Where("UPPER(icao) = UPPER(?)", icao).
		First(&airport).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &airport, nil
}

// InsertIfAbsent inserts airports that are not present yet. Existing rows
// of the same ICAO are never overwritten, which keeps re-running a sync
// pass idempotent.
func (r *AirportRepository) InsertIfAbsent(ctx context.Context, airports []gormModels.Airport) error {
	if len(airports) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(airports, 100).Error

	if err != nil {
		return fmt.Errorf("failed to insert airports: %w", err)
	}

	return nil
}

// ListAll returns all known airports ordered by ICAO
func (r *AirportRepository) ListAll(ctx context.Context) ([]gormModels.Airport, error) {
	var airports []gormModels.Airport

	err := r.db.WithContext(ctx).
		Order("icao ASC").
		Find(&airports).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}

	return airports, nil
}

// Count returns total number of airports
func (r *AirportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Airport{}).Count(&count).Error
	return count, err
}
