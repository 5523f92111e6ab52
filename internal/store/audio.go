package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type AudioRepo struct {
	db *gorm.DB
}

func NewAudioRepo(db *gorm.DB) *AudioRepo {
	return &AudioRepo{db: db}
}

// Get returns the first audio recorded for a conversation.
func (r *AudioRepo) Get(ctx context.Context, conversationID string) (*Audio, error) {
	var a Audio
	if err := r.db.WithContext(ctx).
		Where("id_conversation = ?", conversationID).
		Order("id ASC").
		First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AudioRepo) Insert(ctx context.Context, a *Audio) (*Audio, error) {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("insert audio %s: %w", a.IDConversation, err)
	}
	return a, nil
}

func (r *AudioRepo) Delete(ctx context.Context, a *Audio) error {
	if err := r.db.WithContext(ctx).Delete(a).Error; err != nil {
		return fmt.Errorf("delete audio %d: %w", a.ID, err)
	}
	return nil
}

func (r *AudioRepo) ListByBatch(ctx context.Context, genesysBatchID string) ([]Audio, error) {
	var out []Audio
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", genesysBatchID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// KnownConversations returns the subset of ids that already have an audio
// row with a resolved recording. NO RECORDING rows do not count, so those
// conversations are picked up again by a later run.
func (r *AudioRepo) KnownConversations(ctx context.Context, ids []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(ids) == 0 {
		return known, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).Model(&Audio{}).
		Where("id_conversation IN ? AND status <> ?", ids, AudioNoRecording).
		Distinct().
		Pluck("id_conversation", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		known[id] = struct{}{}
	}
	return known, nil
}
