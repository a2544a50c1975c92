// Package httpapi is the thin gin adapter binding the engine (store,
// materialize, scheduler) to the wire contract: plans and tasks CRUD, start,
// and the line-oriented output stream: gin.IRoutes.Register, one handler per
// route, OK/Error response helpers.
package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelrun/kestrel/internal/materialize"
	"github.com/kestrelrun/kestrel/internal/process"
	"github.com/kestrelrun/kestrel/internal/scheduler"
	"github.com/kestrelrun/kestrel/internal/store"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// API holds the engine dependencies every handler needs.
type API struct {
	store     *store.Store
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// New creates an API bound to the given store and scheduler.
func New(s *store.Store, sched *scheduler.Scheduler, logger *zap.Logger) *API {
	return &API{store: s, scheduler: sched, logger: logger}
}

// Register adds every orchestrator route to route.
func (a *API) Register(route gin.IRoutes) {
	route.POST("/plans", a.CreatePlan)
	route.GET("/plans", a.ListPlans)
	route.GET("/plan/:plan_id", a.GetPlan)
	route.POST("/plan/:plan_id", a.MaterializePlan)
	route.POST("/tasks", a.CreateTask)
	route.GET("/tasks", a.ListTasks)
	route.GET("/tasks/:task_id", a.GetTask)
	route.POST("/tasks/:task_id/start", a.StartTask)
	route.GET("/tasks/:task_id/output", a.TaskOutput)
}

func parseID(raw string) (taskmodel.ID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return taskmodel.ID{}, err
	}
	return id, nil
}

// CreatePlan handles POST /plans.
func (a *API) CreatePlan(c *gin.Context) {
	var body taskmodel.CreatePlan
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, taskmodel.Internal(err))
		return
	}

	record := store.NewPlanRecord(taskmodel.NewID(), body.Spec)
	a.store.InsertPlan(record)
	OK(c, record.Snapshot())
}

// ListPlans handles GET /plans.
func (a *API) ListPlans(c *gin.Context) {
	OK(c, a.store.ListPlans())
}

// GetPlan handles GET /plan/:plan_id.
func (a *API) GetPlan(c *gin.Context) {
	id, err := parseID(c.Param("plan_id"))
	if err != nil {
		Error(c, taskmodel.PlanNotFound(id))
		return
	}
	record, ok := a.store.GetPlan(id)
	if !ok {
		Error(c, taskmodel.PlanNotFound(id))
		return
	}
	OK(c, record.Snapshot())
}

// MaterializePlan handles POST /plan/:plan_id: materializes the plan's
// current spec into a fresh tree of tasks and returns the root.
func (a *API) MaterializePlan(c *gin.Context) {
	id, err := parseID(c.Param("plan_id"))
	if err != nil {
		Error(c, taskmodel.PlanNotFound(id))
		return
	}
	record, ok := a.store.GetPlan(id)
	if !ok {
		Error(c, taskmodel.PlanNotFound(id))
		return
	}

	plan := record.Snapshot()
	ref := &taskmodel.PlanRef{PlanID: plan.ID, Version: plan.Version}
	root := materialize.Plan(a.store, ref, plan.Spec)
	OK(c, root)
}

// CreateTask handles POST /tasks: registers a single task tree directly,
// bypassing the plan store (no PlanRef is attached).
func (a *API) CreateTask(c *gin.Context) {
	var body taskmodel.CreateTask
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, taskmodel.Internal(err))
		return
	}

	// CreateTask's spec already carries child task IDs rather than nested
	// specs, so it is a leaf materialization: register it as-is.
	id := taskmodel.NewID()
	record := store.NewTaskRecord(id, nil, body.Spec)
	a.store.InsertTask(record)
	OK(c, record.Snapshot())
}

// ListTasks handles GET /tasks.
func (a *API) ListTasks(c *gin.Context) {
	OK(c, a.store.ListTasks())
}

// GetTask handles GET /tasks/:task_id.
func (a *API) GetTask(c *gin.Context) {
	id, err := parseID(c.Param("task_id"))
	if err != nil {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}
	record, ok := a.store.GetTask(id)
	if !ok {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}
	OK(c, record.Snapshot())
}

// StartTask handles POST /tasks/:task_id/start.
func (a *API) StartTask(c *gin.Context) {
	id, err := parseID(c.Param("task_id"))
	if err != nil {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}
	state, err := a.scheduler.Start(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, state)
}

// TaskOutput handles GET /tasks/:task_id/output: streams newline-delimited
// JSON frames of the attached process's output as they arrive. It holds no
// lock while streaming — the Process handle is read once under the task's
// lock, then the lock is released before delegating to process.Stream.
func (a *API) TaskOutput(c *gin.Context) {
	id, err := parseID(c.Param("task_id"))
	if err != nil {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}
	record, ok := a.store.GetTask(id)
	if !ok {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}

	record.Mu.Lock()
	proc := record.Running
	record.Mu.Unlock()
	if proc == nil {
		Error(c, taskmodel.TaskNotFound(id))
		return
	}

	ctx := c.Request.Context()
	stream := process.NewStream(proc)

	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		line, ok, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && a.logger != nil {
				a.logger.Warn("output stream aborted", zap.Error(err))
			}
			return false
		}
		if !ok {
			return false
		}
		data, err := json.Marshal(line)
		if err != nil {
			return false
		}
		bw := bufio.NewWriter(w)
		bw.Write(data)
		bw.WriteByte('\n')
		return bw.Flush() == nil
	})
}
