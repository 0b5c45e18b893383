package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// InviteTeamMemberArgs are the tool arguments for invite_team_member.
type InviteTeamMemberArgs struct {
	TeamID string `json:"team_id" jsonschema:"The team identifier"`
	Email  string `json:"email" jsonschema:"Email address of the user to invite"`
	Role   string `json:"role" mcp:"Role of the new member: owner (admin) or developer (member)" enum:"owner,developer"`
}

// DeleteTeamMemberArgs are the tool arguments for delete_team_member.
type DeleteTeamMemberArgs struct {
	TeamID string `json:"team_id" jsonschema:"The team identifier"`
	UserID string `json:"user_id" jsonschema:"The user identifier to remove"`
}

func registerTeams(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "invite_team_member",
		Description: "Invite a new member to a team",
		Annotations: additive(),
	}, func(ctx context.Context, args InviteTeamMemberArgs) (any, error) {
		return c.InviteTeamMember(ctx, args.TeamID, codemagic.InviteRequest{Email: args.Email, Role: args.Role})
	})

	addTool(r, &mcp.Tool{
		Name:        "delete_team_member",
		Description: "Remove a member from a team",
		Annotations: destructive(),
	}, func(ctx context.Context, args DeleteTeamMemberArgs) (any, error) {
		return c.DeleteTeamMember(ctx, args.TeamID, args.UserID)
	})
}
