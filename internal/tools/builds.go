package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// BuildIDArgs selects one build.
type BuildIDArgs struct {
	BuildID string `json:"build_id" jsonschema:"The build identifier"`
}

// StartBuildArgs are the tool arguments for start_build.
type StartBuildArgs struct {
	AppID        string         `json:"app_id" jsonschema:"The application identifier"`
	WorkflowID   string         `json:"workflow_id" jsonschema:"The workflow identifier"`
	Branch       string         `json:"branch,omitempty" jsonschema:"Branch to build (either branch or tag is required)"`
	Tag          string         `json:"tag,omitempty" jsonschema:"Tag to build (either branch or tag is required)"`
	Environment  map[string]any `json:"environment,omitempty" jsonschema:"Environment variables, variable groups and software versions"`
	Labels       []string       `json:"labels,omitempty" jsonschema:"Labels to attach to the build"`
	InstanceType string         `json:"instance_type,omitempty" jsonschema:"Build machine type, e.g. mac_mini_m2"`
	TeamID       string         `json:"team_id,omitempty" jsonschema:"Team to bill the build to"`
}

// ListBuildsArgs are the tool arguments for get_builds.
type ListBuildsArgs struct {
	AppID      string `json:"app_id,omitempty" jsonschema:"Filter by application identifier"`
	WorkflowID string `json:"workflow_id,omitempty" jsonschema:"Filter by workflow identifier"`
	Branch     string `json:"branch,omitempty" jsonschema:"Filter by branch name"`
	Tag        string `json:"tag,omitempty" jsonschema:"Filter by tag name"`
}

// ListBuildsDetailedArgs are the tool arguments for get_builds_detailed.
type ListBuildsDetailedArgs struct {
	AppID      string `json:"app_id,omitempty" jsonschema:"Filter by application identifier"`
	WorkflowID string `json:"workflow_id,omitempty" jsonschema:"Filter by workflow identifier"`
	Branch     string `json:"branch,omitempty" jsonschema:"Filter by branch name"`
	Tag        string `json:"tag,omitempty" jsonschema:"Filter by tag name"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum number of builds to return (the API defaults to 50)"`
}

func registerBuilds(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "start_build",
		Description: "Start a new build of an application workflow on a branch or tag",
		Annotations: additive(),
	}, func(ctx context.Context, args StartBuildArgs) (any, error) {
		return c.StartBuild(ctx, codemagic.StartBuildRequest{
			AppID:        args.AppID,
			WorkflowID:   args.WorkflowID,
			Branch:       args.Branch,
			Tag:          args.Tag,
			Environment:  args.Environment,
			Labels:       args.Labels,
			InstanceType: args.InstanceType,
			TeamID:       args.TeamID,
		})
	})

	addTool(r, &mcp.Tool{
		Name:        "get_builds",
		Description: "Get the build history, optionally filtered by application, workflow, branch or tag",
		Annotations: readOnly(),
	}, func(ctx context.Context, args ListBuildsArgs) (any, error) {
		return c.ListBuilds(ctx, codemagic.BuildFilter{
			AppID:      args.AppID,
			WorkflowID: args.WorkflowID,
			Branch:     args.Branch,
			Tag:        args.Tag,
		})
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_status",
		Description: "Get the status and details of a specific build",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuild(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "cancel_build",
		Description: "Cancel a running build",
		Annotations: destructive(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.CancelBuild(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_logs",
		Description: "Get the logs of a build, including step-by-step execution details",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildLogs(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_workflow_steps",
		Description: "Get the workflow steps of a build and their execution details",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildWorkflow(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_artifacts",
		Description: "List the artifacts produced by a build with their secure filenames",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildArtifacts(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_environment",
		Description: "Get the environment variables and configuration a build ran with",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildEnvironment(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_builds_detailed",
		Description: "Get builds with extended metadata including status, timing and workflow information",
		Annotations: readOnly(),
	}, func(ctx context.Context, args ListBuildsDetailedArgs) (any, error) {
		return c.ListBuildsDetailed(ctx, codemagic.BuildFilter{
			AppID:      args.AppID,
			WorkflowID: args.WorkflowID,
			Branch:     args.Branch,
			Tag:        args.Tag,
			Limit:      args.Limit,
		})
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_summary",
		Description: "Get a summary of a build combining its status, logs, workflow steps, artifacts and environment. Parts that cannot be fetched are reported as not available",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildSummary(ctx, args.BuildID)
	})
}
