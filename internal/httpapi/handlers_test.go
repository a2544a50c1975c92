package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrun/kestrel/internal/scheduler"
	"github.com/kestrelrun/kestrel/internal/store"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

func newTestRouter() *store.Store {
	return store.New()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetPlan(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodPost, "/plans", taskmodel.CreatePlan{Spec: taskmodel.PlanSpec{Args: []string{"true"}}})
	assert.Equal(t, http.StatusOK, rec.Code)

	var plan taskmodel.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, uint64(0), plan.Version)

	rec = doJSON(t, router, http.MethodGet, "/plan/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPlanNotFound(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodGet, "/plan/"+taskmodel.NewID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaterializePlanReturnsRootTask(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodPost, "/plans", taskmodel.CreatePlan{Spec: taskmodel.PlanSpec{
		Parallel: []taskmodel.PlanSpec{{Args: []string{"true"}}, {Args: []string{"true"}}},
	}})
	var plan taskmodel.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))

	rec = doJSON(t, router, http.MethodPost, "/plan/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var root taskmodel.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, taskmodel.VariantTaskGroup, root.Spec.Variant())
	assert.Len(t, root.Spec.Parallel, 2)
	assert.Equal(t, plan.ID, root.Plan.PlanID)
}

func TestStartTaskRejectsUnknownID(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodPost, "/tasks/"+taskmodel.NewID().String()+"/start", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartTaskRejectsDoubleStart(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodPost, "/tasks", taskmodel.CreateTask{Spec: taskmodel.TaskSpec{Args: []string{"true"}}})
	var task taskmodel.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = doJSON(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/start", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/tasks/"+task.ID.String()+"/start", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskOutputNotFoundWithoutAttachedProcess(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	rec := doJSON(t, router, http.MethodPost, "/tasks", taskmodel.CreateTask{Spec: taskmodel.TaskSpec{Args: []string{"true"}}})
	var task taskmodel.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = doJSON(t, router, http.MethodGet, "/tasks/"+task.ID.String()+"/output", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasksAndPlans(t *testing.T) {
	s := newTestRouter()
	router := NewRouter(s, scheduler.New(s, nil), nil)

	doJSON(t, router, http.MethodPost, "/plans", taskmodel.CreatePlan{Spec: taskmodel.PlanSpec{Args: []string{"true"}}})
	doJSON(t, router, http.MethodPost, "/tasks", taskmodel.CreateTask{Spec: taskmodel.TaskSpec{Args: []string{"true"}}})

	rec := doJSON(t, router, http.MethodGet, "/plans", nil)
	var plans []taskmodel.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	assert.Len(t, plans, 1)

	rec = doJSON(t, router, http.MethodGet, "/tasks", nil)
	var tasks []taskmodel.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)
}
