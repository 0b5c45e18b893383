package tools

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
	"github.com/ee99ee/codemagic-mcp-improved/internal/logging"
)

// upstream is a fake Codemagic API answering every request with one reply.
type upstream struct {
	hits atomic.Int32

	mu    sync.Mutex
	path  string
	query string
}

func (u *upstream) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.mu.Lock()
		u.path, u.query = r.URL.EscapedPath(), r.URL.RawQuery
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (u *upstream) last() (path, query string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.path, u.query
}

func newTestRegistry(t *testing.T, token string, h http.Handler) *Registry {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	logger, _ := logging.NewTestLogger()
	client, err := codemagic.NewClient(codemagic.Options{
		BaseURL:     server.URL,
		Credentials: codemagic.StaticCredential(token),
		HTTPClient:  server.Client(),
		Logger:      logger,
	})
	require.NoError(t, err)

	r, err := New(client, logger)
	require.NoError(t, err)
	return r
}

// validArgs holds arguments accepted by each tool's local validation.
var validArgs = map[string]string{
	"get_all_applications":       `{}`,
	"get_application":            `{"app_id":"app"}`,
	"add_application":            `{"repository_url":"https://github.com/o/r.git"}`,
	"add_application_private":    `{"repository_url":"git@github.com:o/r.git","ssh_key_data":"a2V5"}`,
	"get_artifact":               `{"secure_filename":"u1/u2/app.apk"}`,
	"create_public_artifact_url": `{"secure_filename":"u1/u2/app.apk","expires_at":1700000000}`,
	"start_build":                `{"app_id":"app","workflow_id":"wf","branch":"main"}`,
	"get_builds":                 `{}`,
	"get_build_status":           `{"build_id":"b1"}`,
	"cancel_build":               `{"build_id":"b1"}`,
	"get_build_logs":             `{"build_id":"b1"}`,
	"get_build_workflow_steps":   `{"build_id":"b1"}`,
	"get_build_artifacts":        `{"build_id":"b1"}`,
	"get_build_environment":      `{"build_id":"b1"}`,
	"get_builds_detailed":        `{"limit":10}`,
	"get_build_summary":          `{"build_id":"b1"}`,
	"get_app_caches":             `{"app_id":"app"}`,
	"delete_all_app_caches":      `{"app_id":"app"}`,
	"delete_app_cache":           `{"app_id":"app","cache_id":"c1"}`,
	"invite_team_member":         `{"team_id":"t","email":"a@b.c","role":"developer"}`,
	"delete_team_member":         `{"team_id":"t","user_id":"u"}`,
	"get_workflows":              `{"app_id":"app"}`,
	"get_workflow_details":       `{"workflow_id":"wf"}`,
	"get_build_steps":            `{"build_id":"b1"}`,
	"get_build_step_logs":        `{"build_id":"b1","step_id":"s1"}`,
	"get_build_timeline":         `{"build_id":"b1"}`,
}

func TestNew_RegistersEveryTool(t *testing.T) {
	r := newTestRegistry(t, "token", http.NotFoundHandler())

	names := r.Names()
	assert.Len(t, names, len(validArgs))
	for _, name := range names {
		assert.Contains(t, validArgs, name)

		def, err := r.Tool(name)
		require.NoError(t, err)
		assert.NotEmpty(t, def.Description, name)
		assert.NotNil(t, def.Annotations, name)
		require.NotNil(t, def.InputSchema, name)
		assert.Equal(t, "object", def.InputSchema.Type, name)
	}
	assert.IsIncreasing(t, names)
}

func TestAddTool_DuplicateName(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	r := newRegistry(logger)
	h := func(context.Context, NoArgs) (any, error) { return nil, nil }

	addTool(r, &mcp.Tool{Name: "dup"}, h)
	addTool(r, &mcp.Tool{Name: "dup"}, h)

	require.Len(t, r.errs, 1)
	assert.True(t, codemagic.IsConfiguration(r.errs[0]))
	assert.Equal(t, []string{"dup"}, r.Names())
}

func TestDispatch_UnknownTool(t *testing.T) {
	r := newTestRegistry(t, "token", http.NotFoundHandler())

	_, err := r.Dispatch(context.Background(), "no_such_tool", nil)
	assert.True(t, codemagic.IsNotFound(err))

	_, err = r.Tool("no_such_tool")
	assert.True(t, codemagic.IsNotFound(err))
}

func TestDispatch_ArgumentErrors(t *testing.T) {
	up := &upstream{}
	r := newTestRegistry(t, "token", up.handler(http.StatusOK, `{}`))

	tests := []struct {
		name  string
		tool  string
		args  string
		param string
	}{
		{"missing required", "get_application", `{}`, "app_id"},
		{"blank required", "get_application", `{"app_id":"  "}`, "app_id"},
		{"unknown parameter", "get_application", `{"app_id":"a","bogus":1}`, "bogus"},
		{"wrong type", "get_application", `{"app_id":42}`, "app_id"},
		{"role outside enum", "invite_team_member", `{"team_id":"t","email":"a@b.c","role":"admin"}`, "role"},
		{"unparsable number", "get_builds_detailed", `{"limit":"many"}`, "limit"},
		{"neither branch nor tag", "start_build", `{"app_id":"a","workflow_id":"w"}`, "branch"},
		{"non-positive expiry", "create_public_artifact_url", `{"secure_filename":"a/b/c","expires_at":0}`, "expires_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), tt.tool, []byte(tt.args))
			require.Error(t, err)
			assert.True(t, codemagic.IsInvalidArgument(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.param)
		})
	}
	assert.Zero(t, up.hits.Load())
}

func TestDispatch_NonObjectArguments(t *testing.T) {
	r := newTestRegistry(t, "token", http.NotFoundHandler())

	for _, raw := range []string{`[]`, `"x"`, `12`, `{`} {
		_, err := r.Dispatch(context.Background(), "get_all_applications", []byte(raw))
		assert.True(t, codemagic.IsInvalidArgument(err), "args %s", raw)
	}
}

func TestDispatch_CoercesNumericStrings(t *testing.T) {
	up := &upstream{}
	r := newTestRegistry(t, "token", up.handler(http.StatusOK, `{"builds":[]}`))

	_, err := r.Dispatch(context.Background(), "get_builds_detailed", []byte(`{"app_id":"a","limit":"5"}`))
	require.NoError(t, err)
	path, query := up.last()
	assert.Equal(t, "/builds/detailed", path)
	assert.Equal(t, "appId=a&limit=5", query)
}

func TestDispatch_NullOptionalIsAbsent(t *testing.T) {
	up := &upstream{}
	r := newTestRegistry(t, "token", up.handler(http.StatusOK, `{"builds":[]}`))

	_, err := r.Dispatch(context.Background(), "get_builds", []byte(`{"branch":null,"tag":"v1"}`))
	require.NoError(t, err)
	_, query := up.last()
	assert.Equal(t, "tag=v1", query)
}

type pagedArgs struct {
	Page    int    `json:"page,omitempty" default:"1"`
	Order   string `json:"order,omitempty" default:"desc" enum:"asc,desc"`
	Verbose bool   `json:"verbose,omitempty"`
}

func TestDispatch_AppliesDefaults(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	r := newRegistry(logger)

	var got pagedArgs
	addTool(r, &mcp.Tool{Name: "paged"}, func(_ context.Context, args pagedArgs) (any, error) {
		got = args
		return map[string]any{}, nil
	})
	require.Empty(t, r.errs)

	_, err := r.Dispatch(context.Background(), "paged", []byte(`{"verbose":"true"}`))
	require.NoError(t, err)
	assert.Equal(t, pagedArgs{Page: 1, Order: "desc", Verbose: true}, got)

	_, err = r.Dispatch(context.Background(), "paged", []byte(`{"order":"random"}`))
	assert.True(t, codemagic.IsInvalidArgument(err))
}

func TestDispatch_MissingCredential(t *testing.T) {
	up := &upstream{}
	r := newTestRegistry(t, "", up.handler(http.StatusOK, `{}`))

	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), name, []byte(validArgs[name]))
			require.Error(t, err)
			assert.True(t, codemagic.IsConfiguration(err), "got %v", err)
		})
	}
	assert.Zero(t, up.hits.Load())
}

func TestDispatch_UpstreamErrorPropagates(t *testing.T) {
	r := newTestRegistry(t, "token", (&upstream{}).handler(http.StatusForbidden, `{"error":"forbidden"}`))

	_, err := r.Dispatch(context.Background(), "get_all_applications", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, codemagic.StatusCode(err))
}

func TestNames_Sorted(t *testing.T) {
	logger, _ := logging.NewTestLogger()
	r := newRegistry(logger)
	h := func(context.Context, NoArgs) (any, error) { return nil, nil }
	for _, name := range []string{"get_workflows", "cancel_build", "get_artifact"} {
		addTool(r, &mcp.Tool{Name: name}, h)
	}
	require.Empty(t, r.errs)

	assert.Equal(t, []string{"cancel_build", "get_artifact", "get_workflows"}, r.Names())
}
