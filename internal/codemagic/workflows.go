package codemagic

import "context"

// ListWorkflows returns the workflows of an application.
func (c *Client) ListWorkflows(ctx context.Context, appID string) (any, error) {
	if err := requireArgs("app_id", appID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath("apps", appID, "workflows"), nil)
}

// GetWorkflow returns one workflow.
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (any, error) {
	if err := requireArgs("workflow_id", workflowID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath("workflows", workflowID), nil)
}
