package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type BatchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) *BatchRepo {
	return &BatchRepo{db: db}
}

func (r *BatchRepo) Insert(ctx context.Context, b *Batch) (*Batch, error) {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("insert batch %s: %w", b.GenesysBatchID, err)
	}
	return b, nil
}

func (r *BatchRepo) GetByGenesysID(ctx context.Context, genesysBatchID string) (*Batch, error) {
	var b Batch
	if err := r.db.WithContext(ctx).
		Where("genesys_batch_id = ?", genesysBatchID).
		First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// ListByJob returns the batches of a job in insertion order.
func (r *BatchRepo) ListByJob(ctx context.Context, jobID uint64) ([]Batch, error) {
	var out []Batch
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BatchRepo) UpdateStatus(ctx context.Context, genesysBatchID string, status string) error {
	res := r.db.WithContext(ctx).Model(&Batch{}).
		Where("genesys_batch_id = ?", genesysBatchID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update batch %s: %w", genesysBatchID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BatchRepo) Delete(ctx context.Context, b *Batch) error {
	if err := r.db.WithContext(ctx).Delete(b).Error; err != nil {
		return fmt.Errorf("delete batch %d: %w", b.ID, err)
	}
	return nil
}
