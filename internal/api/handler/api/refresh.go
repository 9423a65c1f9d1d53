// internal/api/handler/api/refresh.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/tickervista/internal/api/job"
	"github.com/newthinker/tickervista/internal/api/response"
	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/pipeline"
	"go.uber.org/zap"
)

const (
	refreshJobType = "refresh"
	refreshTimeout = 30 * time.Minute
)

// Runner performs one refresh pass
type Runner interface {
	Run(ctx context.Context, asOf time.Time) (*pipeline.Result, error)
}

// RefreshHandler triggers refresh runs in the background and reports their
// progress through the job store.
type RefreshHandler struct {
	ctx    context.Context
	runner Runner
	jobs   *job.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRefreshHandler creates a refresh handler. Runs are cancelled with ctx.
func NewRefreshHandler(ctx context.Context, runner Runner, jobs *job.Store, logger *zap.Logger) *RefreshHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshHandler{
		ctx:    ctx,
		runner: runner,
		jobs:   jobs,
		logger: logger,
		now:    time.Now,
	}
}

// Create handles POST /api/v1/refresh
func (h *RefreshHandler) Create(w http.ResponseWriter, r *http.Request) {
	if active, ok := h.jobs.Active(refreshJobType); ok {
		response.JSON(w, http.StatusConflict, map[string]any{
			"job_id": active.ID,
			"status": active.Status,
		})
		return
	}

	j := h.jobs.Create(refreshJobType)

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status
	asOf := h.now().UTC()

	go h.run(jobID, asOf)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

func (h *RefreshHandler) run(jobID string, asOf time.Time) {
	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(h.ctx, refreshTimeout)
	defer cancel()
	res, err := h.runner.Run(ctx, asOf)

	if err != nil {
		h.logger.Warn("refresh job failed", zap.String("job_id", jobID), zap.Error(err))
		coreErr := core.WrapError(core.ErrCollectorFailed, err)
		var known *core.Error
		if errors.As(err, &known) {
			coreErr = known
		}
		h.jobs.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = coreErr
			if res != nil {
				j.Result = res
			}
		})
		return
	}

	h.jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = res
	})
}

// Get handles GET /api/v1/jobs/{id}
func (h *RefreshHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

// List handles GET /api/v1/jobs
func (h *RefreshHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.jobs.List())
}
