package codemagic

import (
	"context"
	"errors"
)

// BuildSummary aggregates the status of a build with its logs, workflow
// steps, artifacts and environment. Each aspect holds either the API reply
// or an {"error": "..."} marker.
type BuildSummary struct {
	Build       any `json:"build"`
	Logs        any `json:"logs"`
	Workflow    any `json:"workflow"`
	Artifacts   any `json:"artifacts"`
	Environment any `json:"environment"`
}

// aspect is the outcome of one summary sub-fetch.
type aspect struct {
	value any
	err   error
}

func fetchAspect(ctx context.Context, buildID string, fetch func(context.Context, string) (any, error)) aspect {
	v, err := fetch(ctx, buildID)
	return aspect{value: v, err: err}
}

// isolated reports whether err may be replaced by a marker. Missing
// configuration and cancellation of the caller's context always propagate.
func (a aspect) isolated(ctx context.Context) bool {
	if a.err == nil {
		return true
	}
	if IsConfiguration(a.err) {
		return false
	}
	if ctx.Err() != nil && (errors.Is(a.err, context.Canceled) || errors.Is(a.err, context.DeadlineExceeded)) {
		return false
	}
	return true
}

// orMarker returns the value, or the "<label> not available" marker.
func (a aspect) orMarker(label string) any {
	if a.err != nil {
		return map[string]any{"error": label + " not available"}
	}
	return a.value
}

// GetBuildSummary fetches the build, then its logs, workflow steps,
// artifacts and environment. The build itself must be readable; every other
// aspect fails independently and is replaced by a marker.
func (c *Client) GetBuildSummary(ctx context.Context, buildID string) (*BuildSummary, error) {
	build, err := c.GetBuild(ctx, buildID)
	if err != nil {
		return nil, err
	}

	summary := &BuildSummary{Build: build}
	aspects := []struct {
		label string
		fetch func(context.Context, string) (any, error)
		dst   *any
	}{
		{"Logs", c.GetBuildLogs, &summary.Logs},
		{"Workflow steps", c.GetBuildWorkflow, &summary.Workflow},
		{"Artifacts", c.GetBuildArtifacts, &summary.Artifacts},
		{"Environment", c.GetBuildEnvironment, &summary.Environment},
	}

	for _, a := range aspects {
		res := fetchAspect(ctx, buildID, a.fetch)
		if !res.isolated(ctx) {
			return nil, res.err
		}
		if res.err != nil {
			c.logger.Warn("build summary aspect unavailable", "build_id", buildID, "aspect", a.label, "error", res.err)
		}
		*a.dst = res.orMarker(a.label)
	}
	return summary, nil
}
