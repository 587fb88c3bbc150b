package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/celerix-dev/cadastro/internal/batch"
	"github.com/celerix-dev/cadastro/internal/engine"
	"github.com/celerix-dev/cadastro/internal/metrics"
	"github.com/celerix-dev/cadastro/internal/source"
	"github.com/celerix-dev/cadastro/internal/validator"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

type Handler struct {
	Store     engine.BatchStore
	Validator *validator.Validator
	Metrics   *metrics.Metrics
	Log       zerolog.Logger
	Workers   int
	// CSV bodies: delimiter and whether the first row is a header.
	Comma      rune
	SkipHeader bool
}

func (h *Handler) observer() batch.Observer {
	if h.Metrics == nil {
		return nil
	}
	return h.Metrics
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Validate classifies a single JSON record.
func (h *Handler) Validate(c *gin.Context) {
	var input map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := schema.FromMap(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	failures := h.Validator.Failures(rec)
	out := validator.Verdict(rec, failures)
	if h.Metrics != nil {
		h.Metrics.ObserveRecord(out.Status, failures)
	}
	c.JSON(http.StatusOK, out)
}

// CreateBatch validates a JSON array of records, or a CSV body when the
// content type is text/csv, and stores the result.
func (h *Handler) CreateBatch(c *gin.Context) {
	recs, err := h.readBatch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, summary, err := batch.Run(c.Request.Context(), h.Validator, recs, batch.Options{
		Workers:  h.Workers,
		Observer: h.observer(),
	})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if h.Metrics != nil {
		h.Metrics.ObserveBatch(len(recs))
	}

	b := schema.Batch{
		ID:        uuid.NewString(),
		Source:    c.Query("source"),
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
		Records:   out,
	}
	if err := h.Store.Put(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Log.Info().
		Str("batch", b.ID).
		Int("total", summary.Total).
		Int("invalid", summary.Invalid).
		Msg("batch validated")
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) readBatch(c *gin.Context) ([]schema.RawRecord, error) {
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		skip := h.SkipHeader
		if v, ok := c.GetQuery("header"); ok {
			skip = v != "false" && v != "0"
		}
		rows, err := source.NewReader(c.Request.Body, source.Options{Comma: h.Comma, SkipHeader: skip}).ReadAll()
		if err != nil {
			return nil, err
		}
		return source.Records(rows), nil
	}

	var input []map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, err
	}
	recs := make([]schema.RawRecord, len(input))
	for i, m := range input {
		rec, err := schema.FromMap(m)
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return recs, nil
}

func (h *Handler) ListBatches(c *gin.Context) {
	ids, err := h.Store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) GetBatch(c *gin.Context) {
	b, err := h.Store.Get(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBatch(c *gin.Context) {
	if err := h.Store.Delete(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func statusFor(err error) int {
	if errors.Is(err, engine.ErrBatchNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
