package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
)

// artifactScheme prefixes the URI of embedded artifact downloads.
const artifactScheme = "codemagic://artifacts/"

// Install adds every registered tool to s.
//
// Over MCP the go-sdk validates arguments against the input schema before
// the tool runs, so a type or enum mismatch is answered with a JSON-RPC
// error naming the schema path, and numeric strings are not coerced. Errors
// raised by the tool itself, including the local checks behind Dispatch,
// come back as a result with IsError set.
func (r *Registry) Install(s *mcp.Server) {
	for _, name := range r.Names() {
		t := r.tools[name]
		mcp.AddTool(s, t.def, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
			if args == nil {
				args = map[string]any{}
			}
			out, err := r.invoke(ctx, t, args)
			if err != nil {
				r.logger.Warn("tool failed", "tool", name, "error", err)
				return errorResult(err), nil, nil
			}
			res, err := toolResult(out)
			if err != nil {
				return errorResult(err), nil, nil
			}
			return res, res.StructuredContent, nil
		})
	}
}

// toolResult shapes a handler value for MCP. Artifacts become an embedded
// blob; everything else is JSON text, plus structured content when the value
// is an object.
func toolResult(out any) (*mcp.CallToolResult, error) {
	if a, ok := out.(*codemagic.Artifact); ok {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.EmbeddedResource{
				Resource: &mcp.ResourceContents{
					URI:      artifactScheme + a.SecureFilename,
					MIMEType: a.ContentType,
					Blob:     a.Data,
				},
			}},
		}, nil
	}

	b, err := jsonx.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	res := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
	if generic, err := jsonx.Decode(b); err == nil {
		if obj, ok := generic.(map[string]any); ok {
			res.StructuredContent = obj
		}
	}
	return res, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}
