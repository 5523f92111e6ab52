package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/audios-sac-extract/internal/store"
)

func jobIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		Fail(c, http.StatusBadRequest, 10001, "invalid job id")
		return 0, false
	}
	return id, true
}

func (h *Handler) GetJob(c *gin.Context) {
	id, valid := jobIDParam(c)
	if !valid {
		return
	}
	job, err := h.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(c, http.StatusNotFound, 40401, "job not found")
			return
		}
		Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	ok(c, job)
}

func (h *Handler) ListJobBatches(c *gin.Context) {
	id, valid := jobIDParam(c)
	if !valid {
		return
	}
	if _, err := h.Jobs.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(c, http.StatusNotFound, 40401, "job not found")
			return
		}
		Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	batches, err := h.Batches.ListByJob(c.Request.Context(), id)
	if err != nil {
		Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	ok(c, gin.H{"job_id": id, "batches": batches})
}

func (h *Handler) ListBatchAudios(c *gin.Context) {
	batchID := c.Param("genesys_batch_id")
	if batchID == "" {
		Fail(c, http.StatusBadRequest, 10002, "genesys batch id required")
		return
	}
	audios, err := h.Audios.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	ok(c, gin.H{"genesys_batch_id": batchID, "audios": audios})
}
