package codemagic

import (
	"context"
	"fmt"
	"net/http"
	"slices"
)

// Team roles accepted by the invitation endpoint.
const (
	RoleOwner     = "owner"     // Admin
	RoleDeveloper = "developer" // Member
)

// Roles lists the valid invitation roles.
var Roles = []string{RoleOwner, RoleDeveloper}

// InviteRequest is the body of POST /team/{id}/invitation.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate checks the request locally.
func (r InviteRequest) Validate() error {
	if err := requireArgs("email", r.Email); err != nil {
		return err
	}
	if !slices.Contains(Roles, r.Role) {
		return &InvalidArgumentError{
			Param:  "role",
			Reason: fmt.Sprintf("role must be either %q or %q, got %q", RoleOwner, RoleDeveloper, r.Role),
		}
	}
	return nil
}

// InviteTeamMember invites a user to a team and returns the team object.
func (c *Client) InviteTeamMember(ctx context.Context, teamID string, req InviteRequest) (any, error) {
	if err := requireArgs("team_id", teamID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, apiPath("team", teamID, "invitation"), req)
}

// DeleteTeamMember removes a collaborator from a team.
func (c *Client) DeleteTeamMember(ctx context.Context, teamID, userID string) (any, error) {
	if err := requireArgs("team_id", teamID, "user_id", userID); err != nil {
		return nil, err
	}
	return c.deleteJSON(ctx, apiPath("team", teamID, "collaborator", userID))
}
