package codemagic

import (
	"context"
	"net/http"
	"path"
)

// Artifact is a downloaded build artifact. Data is the body exactly as
// served by the API.
type Artifact struct {
	SecureFilename string
	ContentType    string
	Data           []byte
}

// Filename returns the last segment of the secure filename.
func (a *Artifact) Filename() string { return path.Base(a.SecureFilename) }

// PublicURLRequest is the body of POST /artifacts/{secureFilename}/public-url.
type PublicURLRequest struct {
	// ExpiresAt is a UNIX timestamp in seconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// GetArtifact downloads an artifact. The body is never decoded.
func (c *Client) GetArtifact(ctx context.Context, secureFilename string) (*Artifact, error) {
	if err := requireArgs("secure_filename", secureFilename); err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, Request{
		Method:   http.MethodGet,
		Path:     artifactPath(secureFilename),
		Download: true,
	})
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Artifact{SecureFilename: secureFilename, ContentType: ct, Data: resp.Bytes()}, nil
}

// CreatePublicArtifactURL creates a public download URL valid until
// expiresAt (UNIX seconds).
func (c *Client) CreatePublicArtifactURL(ctx context.Context, secureFilename string, expiresAt int64) (any, error) {
	if err := requireArgs("secure_filename", secureFilename); err != nil {
		return nil, err
	}
	if expiresAt <= 0 {
		return nil, &InvalidArgumentError{Param: "expires_at", Reason: "must be a positive UNIX timestamp in seconds"}
	}
	return c.sendJSON(ctx, http.MethodPost, artifactPath(secureFilename, "public-url"), PublicURLRequest{ExpiresAt: expiresAt})
}
