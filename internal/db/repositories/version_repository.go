package repositories

import (
	"context"
	"fmt"

	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionRepository handles airac_versions table operations
type VersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// GetByVersion finds a cycle by its opaque version id
func (r *VersionRepository) GetByVersion(ctx context.Context, version string) (*gormModels.AiracVersion, error) {
	var v gormModels.AiracVersion

	err := r.db.WithContext(ctx).
		Where("version = ?", version).
		First(&v).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch version: %w", err)
	}

	return &v, nil
}

// GetCurrent returns the cycle marked current, or nil if none is
func (r *VersionRepository) GetCurrent(ctx context.Context) (*gormModels.AiracVersion, error) {
	var v gormModels.AiracVersion

	err := r.db.WithContext(ctx).
		Where("is_current = ?", true).
		First(&v).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch current version: %w", err)
	}

	return &v, nil
}

// ListByEffectiveDateDesc returns all known cycles, newest first
func (r *VersionRepository) ListByEffectiveDateDesc(ctx context.Context) ([]gormModels.AiracVersion, error) {
	var versions []gormModels.AiracVersion

	err := r.db.WithContext(ctx).
		Order("effective_date DESC").
		Find(&versions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

// CreateIfAbsent inserts the cycle row unless one with the same version
// id already exists, so an interrupted pass can re-target the same cycle
func (r *VersionRepository) CreateIfAbsent(ctx context.Context, v *gormModels.AiracVersion) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(v).Error

	if err != nil {
		return fmt.Errorf("failed to create version row: %w", err)
	}

	return nil
}

// UpdateCounts persists the progress counters on a cycle row
func (r *VersionRepository) UpdateCounts(ctx context.Context, version string, total, downloaded int) error {
	result := r.db.WithContext(ctx).
		Model(&gormModels.AiracVersion{}).
		Where("version = ?", version).
		Updates(map[string]interface{}{
			"total_document_count":      total,
			"downloaded_document_count": downloaded,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update version counters: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("version not found: %s", version)
	}

	return nil
}

// PromoteCurrent demotes every cycle and promotes the given one inside a
// single transaction, so a crash can never leave zero or two rows current
func (r *VersionRepository) PromoteCurrent(ctx context.Context, version string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&gormModels.AiracVersion{}).
			Where("version <> ?", version).
			Update("is_current", false).Error; err != nil {
			return fmt.Errorf("failed to demote versions: %w", err)
		}

		result := tx.Model(&gormModels.AiracVersion{}).
			Where("version = ?", version).
			Update("is_current", true)

		if result.Error != nil {
			return fmt.Errorf("failed to promote version %s: %w", version, result.Error)
		}

		if result.RowsAffected == 0 {
			return fmt.Errorf("version not found: %s", version)
		}

		return nil
	})
}

// Delete removes one cycle row
func (r *VersionRepository) Delete(ctx context.Context, version string) error {
	err := r.db.WithContext(ctx).
		Where("version = ?", version).
		Delete(&gormModels.AiracVersion{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete version %s: %w", version, err)
	}

	return nil
}
