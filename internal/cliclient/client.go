// Package cliclient is the CLI's HTTP client for the orchestrator server: a
// thin resty wrapper over the routes in internal/httpapi, used by every
// remote subcommand (create plan, plan, start, run, tail).
package cliclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/kestrelrun/kestrel/internal/process"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// Client talks to a running orchestrator server over HTTP.
type Client struct {
	rest    *resty.Client
	baseURL string
}

// New creates a Client targeting baseURL (e.g. http://127.0.0.1:3000).
func New(baseURL string) *Client {
	return &Client{rest: resty.New(), baseURL: baseURL}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx)
}

// checkStatus turns a non-2xx resty response into an error carrying the
// server's plain text body, matching the wire contract's error bodies.
func checkStatus(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// CreatePlan posts a new plan and returns the created record.
func (c *Client) CreatePlan(ctx context.Context, spec taskmodel.PlanSpec) (taskmodel.Plan, error) {
	var plan taskmodel.Plan
	resp, err := c.request(ctx).
		SetBody(taskmodel.CreatePlan{Spec: spec}).
		SetResult(&plan).
		Post(c.baseURL + "/plans")
	if err := checkStatus(resp, err); err != nil {
		return taskmodel.Plan{}, err
	}
	return plan, nil
}

// GetPlan fetches a plan by ID.
func (c *Client) GetPlan(ctx context.Context, id taskmodel.ID) (taskmodel.Plan, error) {
	var plan taskmodel.Plan
	resp, err := c.request(ctx).
		SetResult(&plan).
		Get(fmt.Sprintf("%s/plan/%s", c.baseURL, id))
	if err := checkStatus(resp, err); err != nil {
		return taskmodel.Plan{}, err
	}
	return plan, nil
}

// MaterializePlan triggers materialization of a plan and returns its root task.
func (c *Client) MaterializePlan(ctx context.Context, id taskmodel.ID) (taskmodel.Task, error) {
	var task taskmodel.Task
	resp, err := c.request(ctx).
		SetResult(&task).
		Post(fmt.Sprintf("%s/plan/%s", c.baseURL, id))
	if err := checkStatus(resp, err); err != nil {
		return taskmodel.Task{}, err
	}
	return task, nil
}

// GetTask fetches a task by ID.
func (c *Client) GetTask(ctx context.Context, id taskmodel.ID) (taskmodel.Task, error) {
	var task taskmodel.Task
	resp, err := c.request(ctx).
		SetResult(&task).
		Get(fmt.Sprintf("%s/tasks/%s", c.baseURL, id))
	if err := checkStatus(resp, err); err != nil {
		return taskmodel.Task{}, err
	}
	return task, nil
}

// StartTask starts a task by ID and returns its freshly admitted state.
func (c *Client) StartTask(ctx context.Context, id taskmodel.ID) (taskmodel.TaskState, error) {
	var state taskmodel.TaskState
	resp, err := c.request(ctx).
		SetResult(&state).
		Post(fmt.Sprintf("%s/tasks/%s/start", c.baseURL, id))
	if err := checkStatus(resp, err); err != nil {
		return taskmodel.TaskState{}, err
	}
	return state, nil
}

// Tail streams a task's output, invoking onLine for each frame as it
// arrives. It returns when the server closes the stream or ctx is canceled.
// SetDoNotParseResponse hands back the raw *http.Response so the body can be
// read incrementally instead of buffered whole, since the stream is
// unbounded and line-oriented rather than a single JSON document.
func (c *Client) Tail(ctx context.Context, id taskmodel.ID, onLine func(process.Line)) error {
	resp, err := c.request(ctx).
		SetDoNotParseResponse(true).
		Get(fmt.Sprintf("%s/tasks/%s/output", c.baseURL, id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	raw := resp.RawResponse
	defer raw.Body.Close()

	if raw.StatusCode >= 300 {
		body, _ := io.ReadAll(raw.Body)
		return fmt.Errorf("server returned %d: %s", raw.StatusCode, body)
	}

	scanner := bufio.NewScanner(raw.Body)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		var frame map[string]string
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			return fmt.Errorf("decode output frame: %w", err)
		}
		if text, ok := frame["Stdout"]; ok {
			onLine(process.Line{Stream: process.Stdout, Text: text})
			continue
		}
		if text, ok := frame["Stderr"]; ok {
			onLine(process.Line{Stream: process.Stderr, Text: text})
		}
	}
	return scanner.Err()
}
