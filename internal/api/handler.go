package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"virusscope/internal/features"
	"virusscope/internal/models"
	"virusscope/internal/scorer"
	"virusscope/internal/store"
)

// ModelSource hands out the two predictors. Either may be nil when its
// artifact is unavailable; err then says why.
type ModelSource interface {
	Predictors() (binary, multiclass scorer.Predictor, err error)
	Status() map[string]string
}

// Auditor records scored predictions.
type Auditor interface {
	Save(ctx context.Context, id string, at time.Time, res scorer.Result) error
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

// RegistrySource adapts a models.Registry to ModelSource.
type RegistrySource struct {
	Registry *models.Registry
}

func (s RegistrySource) Predictors() (scorer.Predictor, scorer.Predictor, error) {
	b, m, err := s.Registry.Load()
	var bp, mp scorer.Predictor
	if b != nil {
		bp = b
	}
	if m != nil {
		mp = m
	}
	return bp, mp, err
}

func (s RegistrySource) Status() map[string]string { return s.Registry.Status() }

type Handler struct {
	scorer      *scorer.Scorer
	models      ModelSource
	audit       Auditor
	logger      *zap.Logger
	maxParallel int
	maxItems    int
	now         func() time.Time
}

type Options struct {
	MaxParallel int
	MaxItems    int
}

// NewHandler wires the HTTP layer. audit may be nil to disable auditing.
func NewHandler(s *scorer.Scorer, src ModelSource, audit Auditor, logger *zap.Logger, opts Options) *Handler {
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 1
	}
	if opts.MaxItems < 1 {
		opts.MaxItems = 500
	}
	return &Handler{
		scorer:      s,
		models:      src,
		audit:       audit,
		logger:      logger,
		maxParallel: opts.MaxParallel,
		maxItems:    opts.MaxItems,
		now:         time.Now,
	}
}

type Patient struct {
	State     string   `json:"state"`
	Gender    string   `json:"gender"`
	AgeYears  float64  `json:"age_years"`
	Month     string   `json:"month"`
	Duration  int      `json:"duration_days"`
	Positives []string `json:"symptoms"`
}

type PredictResponse struct {
	RequestID  string              `json:"request_id"`
	Patient    Patient             `json:"patient"`
	Assessment features.Assessment `json:"assessment"`
	Notes      []string            `json:"notes"`
	Scored     bool                `json:"scored"`
	Result     *scorer.Result      `json:"result,omitempty"`
}

type BatchItem struct {
	Index    int              `json:"index"`
	Response *PredictResponse `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (h *Handler) predictOne(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	in, err := req.Input()
	if err != nil {
		return nil, err
	}
	threshold, err := req.Threshold()
	if err != nil {
		return nil, err
	}
	rec, err := features.BuildRecord(in, h.now())
	if err != nil {
		return nil, err
	}

	assessment := features.Assess(rec)
	resp := &PredictResponse{
		RequestID: uuid.NewString(),
		Patient: Patient{
			State:     rec.State,
			Gender:    rec.Gender,
			AgeYears:  rec.AgeYears,
			Month:     formatMonth(rec.Month),
			Duration:  rec.Duration,
			Positives: rec.Present(),
		},
		Assessment: assessment,
		Notes:      assessment.Notes(),
	}
	if !assessment.Predictable {
		return resp, nil
	}

	binary, multiclass, loadErr := h.models.Predictors()
	if loadErr != nil {
		h.logger.Warn("model unavailable", zap.Error(loadErr))
	}
	res := h.scorer.Score(scorer.Request{
		Record:     rec,
		Binary:     binary,
		Multiclass: multiclass,
		Threshold:  threshold,
	})
	resp.Scored = true
	resp.Result = &res
	if res.Presentation.Mode == scorer.TopPrediction {
		resp.Notes = append(resp.Notes, "no prediction cleared the confidence threshold; showing the top prediction")
	}
	if len(res.UnseenFields) > 0 {
		resp.Notes = append(resp.Notes, "some values were not seen during training and were encoded as unknown")
	}

	if h.audit != nil {
		if err := h.audit.Save(ctx, resp.RequestID, h.now(), res); err != nil {
			h.logger.Warn("audit save failed", zap.String("request_id", resp.RequestID), zap.Error(err))
		}
	}
	return resp, nil
}

func (h *Handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	resp, err := h.predictOne(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient record", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Batch scores every item independently with bounded parallelism. Item
// errors are reported per item; output order matches input order.
func (h *Handler) Batch(c *gin.Context) {
	var items []json.RawMessage
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if len(items) == 0 || len(items) > h.maxItems {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": "batch must contain between 1 and " + strconv.Itoa(h.maxItems) + " items",
		})
		return
	}

	out := make([]BatchItem, len(items))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(h.maxParallel)
	for i := range items {
		i := i
		g.Go(func() error {
			out[i].Index = i
			resp, err := h.batchItem(ctx, items[i])
			if err != nil {
				out[i].Error = err.Error()
				return nil
			}
			out[i].Response = resp
			return nil
		})
	}
	_ = g.Wait()
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handler) batchItem(ctx context.Context, raw json.RawMessage) (*PredictResponse, error) {
	var req PredictRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return h.predictOne(ctx, req)
}

var (
	schemaOnce sync.Once
	schemaBody gin.H
)

func (h *Handler) Schema(c *gin.Context) {
	schemaOnce.Do(func() {
		fields := make([]gin.H, len(features.Schema))
		for i, f := range features.Schema {
			kind := "categorical"
			if f.Kind == features.Numeric {
				kind = "numeric"
			}
			fields[i] = gin.H{"name": f.Name, "kind": kind}
		}
		groups := make([]gin.H, len(features.Groups))
		for i, g := range features.Groups {
			syms := make([]gin.H, len(g.Symptoms))
			for j, s := range g.Symptoms {
				syms[j] = gin.H{"name": s, "display": features.DisplayNames[s], "toggle": j == 0}
			}
			groups[i] = gin.H{"name": g.Name, "symptoms": syms}
		}
		schemaBody = gin.H{
			"fields":  fields,
			"groups":  groups,
			"states":  features.States,
			"genders": features.Genders,
			"months":  features.Months,
		}
	})
	c.JSON(http.StatusOK, schemaBody)
}

func (h *Handler) Health(c *gin.Context) {
	status := h.models.Status()
	healthy := true
	for _, s := range status {
		if s != "ok" {
			healthy = false
		}
	}
	state := "healthy"
	if !healthy {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    state,
		"models":    status,
		"threshold": gin.H{"mode": h.scorer.Policy().Mode, "percent": h.scorer.Policy().Percent},
		"gated":     h.scorer.GatedLabel(),
		"timestamp": h.now().UTC(),
	})
}

func (h *Handler) Recent(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit store disabled"})
		return
	}
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": "limit must be 1-1000"})
			return
		}
		limit = n
	}
	entries, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("audit query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit store error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
