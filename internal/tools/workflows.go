package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// WorkflowIDArgs selects one workflow.
type WorkflowIDArgs struct {
	WorkflowID string `json:"workflow_id" jsonschema:"The workflow identifier"`
}

// BuildStepArgs selects one step of a build.
type BuildStepArgs struct {
	BuildID string `json:"build_id" jsonschema:"The build identifier"`
	StepID  string `json:"step_id" jsonschema:"The step identifier"`
}

func registerWorkflows(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "get_workflows",
		Description: "Get all workflows of an application",
		Annotations: readOnly(),
	}, func(ctx context.Context, args AppIDArgs) (any, error) {
		return c.ListWorkflows(ctx, args.AppID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_workflow_details",
		Description: "Get detailed information about a specific workflow",
		Annotations: readOnly(),
	}, func(ctx context.Context, args WorkflowIDArgs) (any, error) {
		return c.GetWorkflow(ctx, args.WorkflowID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_steps",
		Description: "Get the individual steps of a build and their execution details",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildSteps(ctx, args.BuildID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_step_logs",
		Description: "Get the logs of a specific step within a build",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildStepArgs) (any, error) {
		return c.GetBuildStepLogs(ctx, args.BuildID, args.StepID)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_build_timeline",
		Description: "Get the timeline of events of a build showing its progression through steps",
		Annotations: readOnly(),
	}, func(ctx context.Context, args BuildIDArgs) (any, error) {
		return c.GetBuildTimeline(ctx, args.BuildID)
	})
}
