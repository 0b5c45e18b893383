package codemagic

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// StartBuildRequest is the body of POST /builds. Optional fields are left
// out of the payload when empty.
type StartBuildRequest struct {
	AppID        string         `json:"appId"`
	WorkflowID   string         `json:"workflowId"`
	Branch       string         `json:"branch,omitempty"`
	Tag          string         `json:"tag,omitempty"`
	Environment  map[string]any `json:"environment,omitempty"`
	Labels       []string       `json:"labels,omitempty"`
	InstanceType string         `json:"instanceType,omitempty"`
	TeamID       string         `json:"teamId,omitempty"`
}

// Validate checks the fields the API requires. Giving both branch and tag
// is accepted; the API decides which one wins.
func (r StartBuildRequest) Validate() error {
	if err := requireArgs("app_id", r.AppID, "workflow_id", r.WorkflowID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Branch) == "" && strings.TrimSpace(r.Tag) == "" {
		return &InvalidArgumentError{Param: "branch", Reason: "either branch or tag must be provided"}
	}
	return nil
}

// BuildFilter narrows build listings. Zero values are not sent.
type BuildFilter struct {
	AppID      string
	WorkflowID string
	Branch     string
	Tag        string

	// Limit applies to the detailed listing only.
	Limit int
}

// Values encodes the filter as query parameters.
func (f BuildFilter) Values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("appId", f.AppID)
	set("workflowId", f.WorkflowID)
	set("branch", f.Branch)
	set("tag", f.Tag)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// AlreadyFinishedMessage is reported when cancelling a build that has
// already completed (HTTP 208).
const AlreadyFinishedMessage = "Build has already finished"

// StartBuild queues a new build and returns the API reply, which carries the
// build id.
func (c *Client) StartBuild(ctx context.Context, req StartBuildRequest) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, "/builds", req)
}

// ListBuilds returns the build history, optionally filtered.
func (c *Client) ListBuilds(ctx context.Context, f BuildFilter) (any, error) {
	f.Limit = 0
	return c.getJSON(ctx, "/builds", f.Values())
}

// ListBuildsDetailed returns builds with extended metadata.
func (c *Client) ListBuildsDetailed(ctx context.Context, f BuildFilter) (any, error) {
	if f.Limit < 0 {
		return nil, &InvalidArgumentError{Param: "limit", Reason: "must not be negative"}
	}
	return c.getJSON(ctx, "/builds/detailed", f.Values())
}

// GetBuild returns the application and build information for buildID.
func (c *Client) GetBuild(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID)
}

// CancelBuild cancels a running build. A build that has already finished is
// reported as a message rather than an error.
func (c *Client) CancelBuild(ctx context.Context, buildID string) (any, error) {
	if err := requireArgs("build_id", buildID); err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: apiPath("builds", buildID, "cancel")})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusAlreadyReported {
		return map[string]any{"message": AlreadyFinishedMessage}, nil
	}
	return resp.JSONOrEmpty()
}

// GetBuildLogs returns the build logs with step details.
func (c *Client) GetBuildLogs(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "logs")
}

// GetBuildWorkflow returns the workflow steps executed by a build.
func (c *Client) GetBuildWorkflow(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "workflow")
}

// GetBuildArtifacts lists the artifacts produced by a build.
func (c *Client) GetBuildArtifacts(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "artifacts")
}

// GetBuildEnvironment returns the environment a build ran with.
func (c *Client) GetBuildEnvironment(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "environment")
}

// GetBuildSteps returns the individual steps of a build.
func (c *Client) GetBuildSteps(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "steps")
}

// GetBuildStepLogs returns the logs of one build step.
func (c *Client) GetBuildStepLogs(ctx context.Context, buildID, stepID string) (any, error) {
	if err := requireArgs("build_id", buildID, "step_id", stepID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath("builds", buildID, "steps", stepID, "logs"), nil)
}

// GetBuildTimeline returns the timeline of events for a build.
func (c *Client) GetBuildTimeline(ctx context.Context, buildID string) (any, error) {
	return c.buildResource(ctx, buildID, "timeline")
}

// buildResource fetches /builds/{id}[/sub].
func (c *Client) buildResource(ctx context.Context, buildID string, sub ...string) (any, error) {
	if err := requireArgs("build_id", buildID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath(append([]string{"builds", buildID}, sub...)...), nil)
}
