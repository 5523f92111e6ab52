package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type JobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Insert(ctx context.Context, j *Job) (*Job, error) {
	if err := r.db.WithContext(ctx).Create(j).Error; err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) Get(ctx context.Context, id uint64) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uint64, status JobStatus) error {
	return r.updates(ctx, id, map[string]any{"status": status})
}

func (r *JobRepo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.updates(ctx, id, map[string]any{
		"status":        JobFailed,
		"error_message": errMsg,
	})
}

func (r *JobRepo) SetNotifyID(ctx context.Context, id uint64, notifyID string) error {
	return r.updates(ctx, id, map[string]any{"notify_id": notifyID})
}

func (r *JobRepo) Delete(ctx context.Context, j *Job) error {
	if err := r.db.WithContext(ctx).Delete(j).Error; err != nil {
		return fmt.Errorf("delete job %d: %w", j.ID, err)
	}
	return nil
}

func (r *JobRepo) updates(ctx context.Context, id uint64, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
