package repositories

import (
	"context"
	"fmt"

	gormModels "stratus-efb/chartvault/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository handles documents table operations
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// InsertIfAbsent inserts document rows, skipping any whose
// (document_id, airac_version) pair already exists. Checkpointed flushes
// during a pass rely on this for crash-safe re-runs.
func (r *DocumentRepository) InsertIfAbsent(ctx context.Context, docs []gormModels.Document) error {
	if len(docs) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(docs, 100).Error

	if err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}

	return nil
}

// GetByDocumentID finds one document within a cycle
func (r *DocumentRepository) GetByDocumentID(ctx context.Context, version, documentID string) (*gormModels.Document, error) {
	var doc gormModels.Document

	err := r.db.WithContext(ctx).
		Where("airac_version = ? AND document_id = ?", version, documentID).
		First(&doc).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &doc, nil
}

// ListByVersionAndICAO returns a cycle's documents for one airport
func (r *DocumentRepository) ListByVersionAndICAO(ctx context.Context, version, icao string) ([]gormModels.Document, error) {
	var docs []gormModels.Document

	err := r.db.WithContext(ctx).
		Where("airac_version = ? AND UPPER(icao) = UPPER(?)", version, icao).
		Order("kind ASC, document_id ASC").
		Find(&docs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// MarkOpened flips the is_opened flag, the only mutation a document row
// sees after it is written
func (r *DocumentRepository) MarkOpened(ctx context.Context, version, documentID string) error {
	err := r.db.WithContext(ctx).
		Model(&gormModels.Document{}).
		Where("airac_version = ? AND document_id = ?", version, documentID).
		Update("is_opened", true).Error

	if err != nil {
		return fmt.Errorf("failed to mark document opened: %w", err)
	}

	return nil
}

// CountByVersion returns how many rows a cycle owns
func (r *DocumentRepository) CountByVersion(ctx context.Context, version string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Document{}).
		Where("airac_version = ?", version).
		Count(&count).Error
	return count, err
}

// DeleteByVersion removes all of a cycle's document rows
func (r *DocumentRepository) DeleteByVersion(ctx context.Context, version string) error {
	err := r.db.WithContext(ctx).
		Where("airac_version = ?", version).
		Delete(&gormModels.Document{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete documents for version %s: %w", version, err)
	}

	return nil
}
