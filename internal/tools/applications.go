package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// NoArgs is the argument type of tools without parameters.
type NoArgs struct{}

// AppIDArgs selects one application.
type AppIDArgs struct {
	AppID string `json:"app_id" jsonschema:"The application identifier"`
}

// AddApplicationArgs are the tool arguments for add_application.
type AddApplicationArgs struct {
	RepositoryURL string `json:"repository_url" jsonschema:"SSH or HTTPS URL for cloning the repository"`
	TeamID        string `json:"team_id,omitempty" jsonschema:"Team to add the application to directly (requires admin rights)"`
}

// AddPrivateApplicationArgs are the tool arguments for add_application_private.
type AddPrivateApplicationArgs struct {
	RepositoryURL    string `json:"repository_url" jsonschema:"SSH or HTTPS URL for cloning the repository"`
	SSHKeyData       string `json:"ssh_key_data" jsonschema:"Base64-encoded private key file"`
	SSHKeyPassphrase string `json:"ssh_key_passphrase,omitempty" jsonschema:"SSH key passphrase, omitted when the key has none"`
	ProjectType      string `json:"project_type,omitempty" jsonschema:"Project type, e.g. flutter-app when a Flutter project is hosted in the repository"`
	TeamID           string `json:"team_id,omitempty" jsonschema:"Team to add the application to directly (requires admin rights)"`
}

func registerApplications(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "get_all_applications",
		Description: "Retrieve all applications from Codemagic",
		Annotations: readOnly(),
	}, func(ctx context.Context, _ NoArgs) (any, error) {
		return c.ListApplications(ctx)
	})

	addTool(r, &mcp.Tool{
		Name:        "get_application",
		Description: "Retrieve a specific application from Codemagic by ID",
		Annotations: readOnly(),
	}, func(ctx context.Context, args AppIDArgs) (any, error) {
		return c.GetApplication(ctx, args.AppID)
	})

	addTool(r, &mcp.Tool{
		Name:        "add_application",
		Description: "Add a new application to Codemagic from a public repository",
		Annotations: additive(),
	}, func(ctx context.Context, args AddApplicationArgs) (any, error) {
		return c.AddApplication(ctx, codemagic.AddApplicationRequest{
			RepositoryURL: args.RepositoryURL,
			TeamID:        args.TeamID,
		})
	})

	addTool(r, &mcp.Tool{
		Name:        "add_application_private",
		Description: "Add a new application from a private repository cloned with an SSH key",
		Annotations: additive(),
	}, func(ctx context.Context, args AddPrivateApplicationArgs) (any, error) {
		return c.AddPrivateApplication(ctx, codemagic.AddPrivateApplicationRequest{
			RepositoryURL: args.RepositoryURL,
			SSHKey:        codemagic.SSHKey{Data: args.SSHKeyData, Passphrase: &args.SSHKeyPassphrase},
			ProjectType:   args.ProjectType,
			TeamID:        args.TeamID,
		})
	})
}
