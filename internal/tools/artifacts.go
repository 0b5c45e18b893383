package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// GetArtifactArgs are the tool arguments for get_artifact.
type GetArtifactArgs struct {
	SecureFilename string `json:"secure_filename" jsonschema:"Secure filename of the artifact in the form uuid1/uuid2/filename.ext, as reported by the builds API"`
}

// CreatePublicArtifactURLArgs are the tool arguments for create_public_artifact_url.
type CreatePublicArtifactURLArgs struct {
	SecureFilename string `json:"secure_filename" jsonschema:"Secure filename of the artifact in the form uuid1/uuid2/filename.ext, as reported by the builds API"`
	ExpiresAt      int64  `json:"expires_at" jsonschema:"URL expiration as a UNIX timestamp in seconds"`
}

func registerArtifacts(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "get_artifact",
		Description: "Download a build artifact. The file is returned as an embedded binary resource",
		Annotations: readOnly(),
	}, func(ctx context.Context, args GetArtifactArgs) (any, error) {
		return c.GetArtifact(ctx, args.SecureFilename)
	})

	addTool(r, &mcp.Tool{
		Name:        "create_public_artifact_url",
		Description: "Create a public download URL for a build artifact that expires at the given time",
		Annotations: additive(),
	}, func(ctx context.Context, args CreatePublicArtifactURLArgs) (any, error) {
		return c.CreatePublicArtifactURL(ctx, args.SecureFilename, args.ExpiresAt)
	})
}
