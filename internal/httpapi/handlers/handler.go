package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
	"gorm.io/gorm"
)

type JobReader interface {
	Get(ctx context.Context, id uint64) (*store.Job, error)
}

type BatchLister interface {
	ListByJob(ctx context.Context, jobID uint64) ([]store.Batch, error)
}

type AudioLister interface {
	ListByBatch(ctx context.Context, genesysBatchID string) ([]store.Audio, error)
}

type Handler struct {
	Jobs    JobReader
	Batches BatchLister
	Audios  AudioLister
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		Jobs:    store.NewJobRepo(db),
		Batches: store.NewBatchRepo(db),
		Audios:  store.NewAudioRepo(db),
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

// Fail writes the error envelope used by every endpoint.
func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	ok(c, gin.H{"pong": true})
}
