package codemagic

import (
	"context"
	"net/http"
)

// AddApplicationRequest is the body of POST /apps.
type AddApplicationRequest struct {
	RepositoryURL string `json:"repositoryUrl"`
	TeamID        string `json:"teamId,omitempty"`
}

// SSHKey carries a base64-encoded private key for a private repository.
type SSHKey struct {
	Data string `json:"data"`

	// Passphrase is serialized as null when the key has none.
	Passphrase *string `json:"passphrase"`
}

// AddPrivateApplicationRequest is the body of POST /apps/new.
type AddPrivateApplicationRequest struct {
	RepositoryURL string `json:"repositoryUrl"`
	SSHKey        SSHKey `json:"sshKey"`
	ProjectType   string `json:"projectType,omitempty"`
	TeamID        string `json:"teamId,omitempty"`
}

// ListApplications returns all applications visible to the token.
func (c *Client) ListApplications(ctx context.Context) (any, error) {
	return c.getJSON(ctx, "/apps", nil)
}

// GetApplication returns one application.
func (c *Client) GetApplication(ctx context.Context, appID string) (any, error) {
	if err := requireArgs("app_id", appID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath("apps", appID), nil)
}

// AddApplication adds an application from a public repository.
func (c *Client) AddApplication(ctx context.Context, req AddApplicationRequest) (any, error) {
	if err := requireArgs("repository_url", req.RepositoryURL); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, http.MethodPost, "/apps", req)
}

// AddPrivateApplication adds an application cloned with an SSH key.
func (c *Client) AddPrivateApplication(ctx context.Context, req AddPrivateApplicationRequest) (any, error) {
	if err := requireArgs("repository_url", req.RepositoryURL, "ssh_key_data", req.SSHKey.Data); err != nil {
		return nil, err
	}
	if req.SSHKey.Passphrase != nil && *req.SSHKey.Passphrase == "" {
		req.SSHKey.Passphrase = nil
	}
	return c.sendJSON(ctx, http.MethodPost, "/apps/new", req)
}
