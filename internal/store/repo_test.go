package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"github.com/suPer8Hu/audios-sac-extract/internal/store/storetest"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func seedJob(t *testing.T, db *gorm.DB) *store.Job {
	t.Helper()
	j, err := store.NewJobRepo(db).Insert(context.Background(), &store.Job{CreationDate: time.Now(), Status: store.JobProcessing})
	require.NoError(t, err)
	return j
}

func seedBatch(t *testing.T, db *gorm.DB, genesysBatchID string) *store.Batch {
	t.Helper()
	j := seedJob(t, db)
	b, err := store.NewBatchRepo(db).Insert(context.Background(), &store.Batch{
		GenesysBatchID: genesysBatchID,
		StartDate:      time.Now(),
		Status:         store.BatchPendingGenesys,
		JobID:          j.ID,
	})
	require.NoError(t, err)
	return b
}

func TestJobRepo_InsertAssignsID(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewJobRepo(db)
	ctx := context.Background()

	j, err := repo.Insert(ctx, &store.Job{CreationDate: time.Now(), Status: store.JobProcessing})
	require.NoError(t, err)
	require.NotZero(t, j.ID)

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobProcessing, got.Status)
	assert.Nil(t, got.NotifyID)
}

func TestJobRepo_UpdateStatus(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewJobRepo(db)
	ctx := context.Background()

	j, err := repo.Insert(ctx, &store.Job{CreationDate: time.Now(), Status: store.JobProcessing})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, j.ID, store.JobSucceeded))
	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobSucceeded, got.Status)

	err = repo.UpdateStatus(ctx, j.ID+100, store.JobSucceeded)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestJobRepo_MarkFailedAndNotifyID(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewJobRepo(db)
	ctx := context.Background()

	j, err := repo.Insert(ctx, &store.Job{CreationDate: time.Now(), Status: store.JobProcessing})
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, j.ID, "analytics unavailable"))
	require.NoError(t, repo.SetNotifyID(ctx, j.ID, "01HZNOTIFY"))

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, store.JobFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "analytics unavailable", *got.ErrorMessage)
	require.NotNil(t, got.NotifyID)
	assert.Equal(t, "01HZNOTIFY", *got.NotifyID)
}

func TestJobRepo_Delete(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewJobRepo(db)
	ctx := context.Background()

	j, err := repo.Insert(ctx, &store.Job{CreationDate: time.Now(), Status: store.JobProcessing})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, j))
	_, err = repo.Get(ctx, j.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBatchRepo_InsertUpdateList(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewBatchRepo(db)
	ctx := context.Background()

	job := seedJob(t, db)
	other := seedJob(t, db)

	processDate := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"gb-1", "gb-2"} {
		_, err := repo.Insert(ctx, &store.Batch{
			GenesysBatchID: id,
			AudiosCount:    3,
			StartDate:      time.Now(),
			ProcessDate:    &processDate,
			Status:         store.BatchPendingGenesys,
			JobID:          job.ID,
		})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, &store.Batch{GenesysBatchID: "other", StartDate: time.Now(), Status: store.BatchPendingGenesys, JobID: other.ID})
	require.NoError(t, err)

	list, err := repo.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gb-1", list[0].GenesysBatchID)
	assert.Equal(t, "gb-2", list[1].GenesysBatchID)

	require.NoError(t, repo.UpdateStatus(ctx, "gb-2", "DOWNLOADED"))
	got, err := repo.GetByGenesysID(ctx, "gb-2")
	require.NoError(t, err)
	assert.Equal(t, "DOWNLOADED", got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", "DOWNLOADED"), store.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.GetByGenesysID(ctx, "gb-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAudioRepo_GetInsertDelete(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewAudioRepo(db)
	ctx := context.Background()

	seedBatch(t, db, "gb-1")

	_, err := repo.Get(ctx, "conv-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	a, err := repo.Insert(ctx, &store.Audio{
		IDConversation: "conv-1",
		Status:         store.AudioPending,
		CreationDate:   time.Now(),
		CallDate:       time.Now().Add(-time.Hour),
		CallDuration:   65000,
		BatchID:        strPtr("gb-1"),
	})
	require.NoError(t, err)
	require.NotZero(t, a.ID)

	got, err := repo.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(65000), got.CallDuration)
	require.NotNil(t, got.BatchID)
	assert.Equal(t, "gb-1", *got.BatchID)
	assert.Nil(t, got.Summary)

	list, err := repo.ListByBatch(ctx, "gb-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.Get(ctx, "conv-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAudioRepo_DuplicateConversationsAllowed(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewAudioRepo(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.Insert(ctx, &store.Audio{
			IDConversation: "conv-dup",
			Status:         store.AudioPending,
			CreationDate:   time.Now(),
			CallDate:       time.Now(),
		})
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, db.Model(&store.Audio{}).Where("id_conversation = ?", "conv-dup").Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestAudioRepo_KnownConversations(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewAudioRepo(db)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "b"} {
		_, err := repo.Insert(ctx, &store.Audio{IDConversation: id, Status: store.AudioPending, CreationDate: time.Now(), CallDate: time.Now()})
		require.NoError(t, err)
	}

	known, err := repo.KnownConversations(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, known, 2)
	assert.Contains(t, known, "a")
	assert.Contains(t, known, "b")
	assert.NotContains(t, known, "c")

	_, err = repo.Insert(ctx, &store.Audio{IDConversation: "c", Status: store.AudioNoRecording, CreationDate: time.Now(), CallDate: time.Now()})
	require.NoError(t, err)
	known, err = repo.KnownConversations(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Empty(t, known, "conversations stored without a recording are retried")

	empty, err := repo.KnownConversations(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBatchRepo_RejectsUnknownJob(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewBatchRepo(db)

	_, err := repo.Insert(context.Background(), &store.Batch{
		GenesysBatchID: "gb-orphan",
		StartDate:      time.Now(),
		Status:         store.BatchPendingGenesys,
		JobID:          999,
	})
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&store.Batch{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestBatchRepo_GenesysBatchIDUnique(t *testing.T) {
	db := storetest.OpenDB(t)
	seedBatch(t, db, "gb-1")

	_, err := store.NewBatchRepo(db).Insert(context.Background(), &store.Batch{
		GenesysBatchID: "gb-1",
		StartDate:      time.Now(),
		Status:         store.BatchPendingGenesys,
		JobID:          seedJob(t, db).ID,
	})
	assert.Error(t, err)
}

func TestAudioRepo_RejectsUnknownBatch(t *testing.T) {
	db := storetest.OpenDB(t)
	repo := store.NewAudioRepo(db)

	_, err := repo.Insert(context.Background(), &store.Audio{
		IDConversation: "conv-1",
		Status:         store.AudioPending,
		CreationDate:   time.Now(),
		CallDate:       time.Now(),
		BatchID:        strPtr("gb-missing"),
	})
	require.Error(t, err)

	_, err = repo.Insert(context.Background(), &store.Audio{
		IDConversation: "conv-2",
		Status:         store.AudioPending,
		CreationDate:   time.Now(),
		CallDate:       time.Now(),
	})
	assert.NoError(t, err, "audios without a batch are allowed")
}

func TestJobRepo_DeleteWithBatchesIsRestricted(t *testing.T) {
	db := storetest.OpenDB(t)
	b := seedBatch(t, db, "gb-1")

	err := store.NewJobRepo(db).Delete(context.Background(), &store.Job{ID: b.JobID})
	assert.Error(t, err)
}
