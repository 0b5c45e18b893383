package codemagic

import "context"

// ListAppCaches returns the caches stored for an application.
func (c *Client) ListAppCaches(ctx context.Context, appID string) (any, error) {
	if err := requireArgs("app_id", appID); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, apiPath("apps", appID, "caches"), nil)
}

// DeleteAllAppCaches deletes every cache of an application. The API answers
// 202 Accepted, with or without a body listing the cache ids scheduled for
// deletion.
func (c *Client) DeleteAllAppCaches(ctx context.Context, appID string) (any, error) {
	if err := requireArgs("app_id", appID); err != nil {
		return nil, err
	}
	return c.deleteJSON(ctx, apiPath("apps", appID, "caches"))
}

// DeleteAppCache deletes one cache of an application.
func (c *Client) DeleteAppCache(ctx context.Context, appID, cacheID string) (any, error) {
	if err := requireArgs("app_id", appID, "cache_id", cacheID); err != nil {
		return nil, err
	}
	return c.deleteJSON(ctx, apiPath("apps", appID, "caches", cacheID))
}
