package codemagic

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
)

// recorder captures the last request seen by a test server.
type recorder struct {
	hits atomic.Int32

	mu   sync.Mutex
	last recorded
}

type recorded struct {
	method string
	path   string
	query  string
	body   []byte
}

func (rec *recorder) handler(status int, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec.hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.last = recorded{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.RawQuery, body: body}
		rec.mu.Unlock()
		if reply == "" {
			w.WriteHeader(status)
			return
		}
		jsonHandler(status, reply)(w, r)
	}
}

func (rec *recorder) request() recorded {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.last
}

func (rec *recorder) decodedBody(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, jsonx.Unmarshal(rec.request().body, &m))
	return m
}

func TestStartBuild_RequiresBranchOrTag(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, `{"buildId":"b1"}`))

	_, err := c.StartBuild(context.Background(), StartBuildRequest{AppID: "app", WorkflowID: "wf"})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Zero(t, rec.hits.Load())
}

func TestStartBuild_OmitsAbsentFields(t *testing.T) {
	tests := []struct {
		name    string
		req     StartBuildRequest
		present []string
		absent  []string
	}{
		{
			name:    "branch only",
			req:     StartBuildRequest{AppID: "app", WorkflowID: "wf", Branch: "main"},
			present: []string{"appId", "workflowId", "branch"},
			absent:  []string{"tag", "environment", "labels", "instanceType", "teamId"},
		},
		{
			name:    "tag only",
			req:     StartBuildRequest{AppID: "app", WorkflowID: "wf", Tag: "v1.0.0"},
			present: []string{"tag"},
			absent:  []string{"branch"},
		},
		{
			name: "both and optionals",
			req: StartBuildRequest{
				AppID: "app", WorkflowID: "wf", Branch: "main", Tag: "v1",
				Environment:  map[string]any{"variables": map[string]any{"A": "1"}},
				Labels:       []string{"nightly"},
				InstanceType: "mac_mini_m2",
				TeamID:       "team",
			},
			present: []string{"branch", "tag", "environment", "labels", "instanceType", "teamId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c := newTestClient(t, rec.handler(http.StatusOK, `{"buildId":"b1"}`))

			out, err := c.StartBuild(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"buildId": "b1"}, out)
			assert.Equal(t, http.MethodPost, rec.request().method)
			assert.Equal(t, "/builds", rec.request().path)

			body := rec.decodedBody(t)
			for _, k := range tt.present {
				assert.Contains(t, body, k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, body, k)
			}
		})
	}
}

func TestCancelBuild_AlreadyReported(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusAlreadyReported, `{"ignored":true}`))

	out, err := c.CancelBuild(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"message": "Build has already finished"}, out)
	assert.Equal(t, "/builds/b1/cancel", rec.request().path)
	assert.Equal(t, http.MethodPost, rec.request().method)
}

func TestCancelBuild_EmptyBody(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, ""))

	out, err := c.CancelBuild(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, out)
}

func TestCancelBuild_UpstreamErrorPropagates(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusConflict, `{"error":"nope"}`))

	_, err := c.CancelBuild(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestListBuilds_Filters(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, `{"builds":[]}`))

	_, err := c.ListBuilds(context.Background(), BuildFilter{AppID: "a", Branch: "main", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "/builds", rec.request().path)
	assert.Equal(t, "appId=a&branch=main", rec.request().query)

	_, err = c.ListBuildsDetailed(context.Background(), BuildFilter{WorkflowID: "wf", Tag: "v1", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, "/builds/detailed", rec.request().path)
	assert.Equal(t, "limit=5&tag=v1&workflowId=wf", rec.request().query)

	_, err = c.ListBuilds(context.Background(), BuildFilter{})
	require.NoError(t, err)
	assert.Empty(t, rec.request().query)
}

func TestBuildSubResources(t *testing.T) {
	tests := []struct {
		path string
		call func(c *Client) (any, error)
	}{
		{"/builds/b1", func(c *Client) (any, error) { return c.GetBuild(context.Background(), "b1") }},
		{"/builds/b1/logs", func(c *Client) (any, error) { return c.GetBuildLogs(context.Background(), "b1") }},
		{"/builds/b1/workflow", func(c *Client) (any, error) { return c.GetBuildWorkflow(context.Background(), "b1") }},
		{"/builds/b1/artifacts", func(c *Client) (any, error) { return c.GetBuildArtifacts(context.Background(), "b1") }},
		{"/builds/b1/environment", func(c *Client) (any, error) { return c.GetBuildEnvironment(context.Background(), "b1") }},
		{"/builds/b1/steps", func(c *Client) (any, error) { return c.GetBuildSteps(context.Background(), "b1") }},
		{"/builds/b1/steps/s2/logs", func(c *Client) (any, error) { return c.GetBuildStepLogs(context.Background(), "b1", "s2") }},
		{"/builds/b1/timeline", func(c *Client) (any, error) { return c.GetBuildTimeline(context.Background(), "b1") }},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := &recorder{}
			reply := `{"path":"` + tt.path + `","n":12345678901234567}`
			c := newTestClient(t, rec.handler(http.StatusOK, reply))

			out, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, rec.request().method)
			assert.Equal(t, tt.path, rec.request().path)

			encoded, err := jsonx.Marshal(out)
			require.NoError(t, err)
			assert.JSONEq(t, reply, string(encoded))
		})
	}
}

func TestBuildResource_BlankID(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec.handler(http.StatusOK, `{}`))

	_, err := c.GetBuildLogs(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "build_id")
	assert.Zero(t, rec.hits.Load())
}
