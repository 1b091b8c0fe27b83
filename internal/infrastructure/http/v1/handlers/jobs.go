package handlers

import (
	"github.com/gin-gonic/gin"

	"taxiledger/internal/domain/jobs"
)

// JobHandler lets an external scheduler trigger period jobs over HTTP.
type JobHandler struct {
	*BaseHandler
	runner *jobs.Runner
}

// NewJobHandler creates a new job handler.
func NewJobHandler(base *BaseHandler, runner *jobs.Runner) *JobHandler {
	return &JobHandler{BaseHandler: base, runner: runner}
}

// Run handles POST /jobs/:name and responds with the job's report.
func (h *JobHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	var job jobs.Job
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &job) {
		return
	}
	job.Name = jobs.Name(c.Param("name"))
	if err := job.Validate(); err != nil {
		h.Error(c, err)
		return
	}

	var (
		report any
		err    error
	)
	switch job.Name {
	case jobs.GenerateRecurring:
		report, err = h.runner.GenerateRecurringMovements(ctx, job.Period)
	case jobs.CloseMonth:
		report, err = h.runner.CloseMonth(ctx, job.Period)
	case jobs.OpenDay:
		err = h.runner.OpenDay(ctx, job.Date)
		report = job
	case jobs.CloseDay:
		err = h.runner.CloseDay(ctx, job.Date)
		report = job
	case jobs.ReimburseFuel:
		report, err = h.runner.ReimburseFuel(ctx, job.Date)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
